// Package identity fronts the external identity provider used for sign-in and sign-up.
package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a sign-in.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrRegistrationFailed is returned when the provider rejects a sign-up.
	ErrRegistrationFailed = errors.New("identity: registration failed")
)

// Tokens are the credentials issued on a successful sign-in.
type Tokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
}

// Gateway verifies credentials and creates accounts.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string) (Tokens, error)
	Register(ctx context.Context, username, password, email string) error
}

// CognitoAPI is the subset of the Cognito user pool client used by Cognito.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
}

// Cognito is a Gateway backed by a Cognito user pool app client.
type Cognito struct {
	Client       CognitoAPI
	ClientID     string
	ClientSecret string // optional; enables SECRET_HASH
}

// Authenticate runs the USER_PASSWORD_AUTH flow.
func (c *Cognito) Authenticate(ctx context.Context, username, password string) (Tokens, error) {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if c.ClientSecret != "" {
		params["SECRET_HASH"] = c.secretHash(username)
	}
	out, err := c.Client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(c.ClientID),
		AuthParameters: params,
	})
	if err != nil {
		if isCredentialError(err) {
			return Tokens{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return Tokens{}, fmt.Errorf("cognito initiate auth: %w", err)
	}
	res := out.AuthenticationResult
	if res == nil {
		return Tokens{}, fmt.Errorf("%w: unsupported challenge %s", ErrInvalidCredentials, out.ChallengeName)
	}
	return Tokens{
		IDToken:      aws.ToString(res.IdToken),
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

// Register signs a new user up with an email attribute. The provider sends
// its own verification message.
func (c *Cognito) Register(ctx context.Context, username, password, email string) error {
	in := &cip.SignUpInput{
		ClientId: aws.String(c.ClientID),
		Username: aws.String(username),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	}
	if c.ClientSecret != "" {
		in.SecretHash = aws.String(c.secretHash(username))
	}
	if _, err := c.Client.SignUp(ctx, in); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	return nil
}

// secretHash is base64(HMAC-SHA256(client secret, username + client id)).
func (c *Cognito) secretHash(username string) string {
	mac := hmac.New(sha256.New, []byte(c.ClientSecret))
	mac.Write([]byte(username + c.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// isCredentialError reports whether err is Cognito rejecting the user or password.
func isCredentialError(err error) bool {
	var notAuthorized *types.NotAuthorizedException
	var notFound *types.UserNotFoundException
	var notConfirmed *types.UserNotConfirmedException
	return errors.As(err, &notAuthorized) || errors.As(err, &notFound) || errors.As(err, &notConfirmed)
}

package catalog

import (
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylejryan/artisan-request-portal/internal/models"
)

var addressRx = regexp.MustCompile(`^([1-9]|[1-9][0-9]|1[0-9][0-9]|200) (Main St|Broadway|Market Rd|Church St), (Uyo|Lagos|Ibadan|Abuja|Port Harcourt|Enugu|Kano)$`)

func TestGenerateShape(t *testing.T) {
	c := Generate(rand.New(rand.NewPCG(1, 2)))

	require.Len(t, c.Artisans, 29)
	assert.Equal(t, map[models.Category]int{
		models.CategoryElectrical: 6,
		models.CategoryPlumbing:   7,
		models.CategoryCarpentry:  8,
		models.CategoryPainting:   5,
		models.CategoryHVAC:       3,
	}, c.CategoryCounts)

	assert.Equal(t, models.ArtisanListing{Name: "Bright Sparks Ltd", Category: models.CategoryElectrical, Address: c.Artisans[0].Address}, c.Artisans[0])
	assert.Equal(t, "AirFix Solutions", c.Artisans[len(c.Artisans)-1].Name)
	for _, a := range c.Artisans {
		assert.Regexp(t, addressRx, a.Address)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := Generate(rand.New(rand.NewPCG(42, 7)))
	b := Generate(rand.New(rand.NewPCG(42, 7)))
	assert.Equal(t, a, b)
}

func TestGenerateCountsMatchListings(t *testing.T) {
	c := Generate(nil)

	counts := map[models.Category]int{}
	for _, a := range c.Artisans {
		counts[a.Category]++
	}
	assert.Equal(t, counts, c.CategoryCounts)
}

func TestGenerateCapsPerCategory(t *testing.T) {
	saved := providers
	t.Cleanup(func() { providers = saved })

	names := make([]string, 14)
	for i := range names {
		names[i] = "Provider"
	}
	providers = []group{{models.CategoryPainting, names}}

	c := Generate(nil)
	assert.Len(t, c.Artisans, MaxPerCategory)
	assert.Equal(t, MaxPerCategory, c.CategoryCounts[models.CategoryPainting])
}

func TestGenerateConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, Generate(nil).Artisans, 29)
		}()
	}
	wg.Wait()
}

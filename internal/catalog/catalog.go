// Package catalog builds the artisan listings shown on the home view.
package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/kylejryan/artisan-request-portal/internal/models"
)

// MaxPerCategory caps how many providers a category contributes.
const MaxPerCategory = 10

type group struct {
	category models.Category
	names    []string
}

// providers is ordered so listings come out grouped the same way on every call.
var providers = []group{
	{models.CategoryElectrical, []string{"Bright Sparks Ltd", "PowerFix Nigeria", "LightWave Solutions", "ElectroPro NG", "WireMasters NG", "AmpedUp NG"}},
	{models.CategoryPlumbing, []string{"PipeMasters", "FlowFix Nigeria", "BlueDrop Plumbing", "LeakStop NG", "DrainPro NG", "SwiftPipe Services", "PlumbKing NG"}},
	{models.CategoryCarpentry, []string{"WoodCraft NG", "FineFinish Carpentry", "Oak & Nails", "UrbanWood Works", "NailIt Pro", "CarveCraft NG", "EliteWood Masters", "CustomJoinery NG"}},
	{models.CategoryPainting, []string{"ColorSplash NG", "ProBrush Painters", "FreshCoat Nigeria", "ElitePainters NG", "PaintMaster NG"}},
	{models.CategoryHVAC, []string{"CoolAir Systems", "ChillPro NG", "AirFix Solutions"}},
}

var (
	streets = []string{"Main St", "Broadway", "Market Rd", "Church St"}
	cities  = []string{"Uyo", "Lagos", "Ibadan", "Abuja", "Port Harcourt", "Enugu", "Kano"}
)

// Catalog is one generated view of the providers.
type Catalog struct {
	Artisans       []models.ArtisanListing
	CategoryCounts map[models.Category]int
}

// Generate lists every provider with a synthesized address drawn from r.
// A nil r uses a freshly seeded source.
func Generate(r *rand.Rand) Catalog {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := Catalog{CategoryCounts: make(map[models.Category]int, len(providers))}
	for _, g := range providers {
		names := g.names[:min(MaxPerCategory, len(g.names))]
		for _, name := range names {
			c.Artisans = append(c.Artisans, models.ArtisanListing{
				Name:     name,
				Category: g.category,
				Address:  address(r),
			})
			c.CategoryCounts[g.category]++
		}
	}
	return c
}

// address renders "<1..200> <street>, <city>".
func address(r *rand.Rand) string {
	return fmt.Sprintf("%d %s, %s", r.IntN(200)+1, streets[r.IntN(len(streets))], cities[r.IntN(len(cities))])
}

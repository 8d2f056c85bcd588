// internal/devserver/seed.go
// Fixture riders so a fresh dev server has someone to swipe on

package devserver

import (
	"fmt"

	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

const (
	DemoEmail    = "demo@gravelmatch.it"
	DemoPassword = "gravel123"
)

// SeedRider describes one fixture account
type SeedRider struct {
	Rider     profile.Rider
	Password  string
	LikesBack bool
	AutoReply string
}

func intp(v int) *int { return &v }

// DefaultSeed is the demo account plus a handful of riders across Italy.
// Riders with LikesBack match on the first like.
func DefaultSeed() []SeedRider {
	return []SeedRider{
		{
			Rider: profile.Rider{
				Email: DemoEmail, Name: "Demo", Age: intp(34),
				ExperienceLevel: profile.LevelIntermediate, AvgDistance: intp(60),
				PreferredZone: "Toscana", Location: "Firenze", ProfileCompleted: true,
				Bio: "Account demo",
			},
			Password: DemoPassword,
		},
		{
			Rider: profile.Rider{
				Email: "giulia@example.it", Name: "Giulia", Age: intp(29),
				ExperienceLevel: profile.LevelIntermediate, AvgDistance: intp(70),
				PreferredZone: "Toscana", Location: "Siena", ProfileCompleted: true,
				Bio: "Strade bianche ogni weekend, caffè obbligatorio a metà giro.",
			},
			Password:  DemoPassword,
			LikesBack: true,
			AutoReply: "Ciao! Domenica vado verso Montalcino, vieni?",
		},
		{
			Rider: profile.Rider{
				Email: "marco@example.it", Name: "Marco", Age: intp(41),
				ExperienceLevel: profile.LevelExpert, AvgDistance: intp(120),
				PreferredZone: "Lombardia", Location: "Bergamo", ProfileCompleted: true,
				Bio: "Bikepacking e lunghe distanze. Prossimo obiettivo: Italy Divide.",
			},
			Password: DemoPassword,
		},
		{
			Rider: profile.Rider{
				Email: "sara@example.it", Name: "Sara", Age: intp(25),
				ExperienceLevel: profile.LevelBeginner, AvgDistance: intp(35),
				PreferredZone: "Veneto", Location: "Treviso", ProfileCompleted: true,
				Bio: "Ho appena preso la mia prima gravel, cerco compagni pazienti!",
			},
			Password:  DemoPassword,
			LikesBack: true,
		},
		{
			Rider: profile.Rider{
				Email: "luca@example.it", Name: "Luca", Age: intp(37),
				ExperienceLevel: profile.LevelIntermediate, AvgDistance: intp(80),
				PreferredZone: "Emilia-Romagna", Location: "Bologna", ProfileCompleted: true,
				Bio: "Appennino, fango e tortellini.",
			},
			Password: DemoPassword,
		},
		{
			Rider: profile.Rider{
				Email: "elena@example.it", Name: "Elena", Age: intp(33),
				ExperienceLevel: profile.LevelExpert, AvgDistance: intp(100),
				PreferredZone: "Sardegna", Location: "Nuoro", ProfileCompleted: true,
				Bio: "Sterrati sul mare e vento contrario.",
			},
			Password: DemoPassword,
		},
		{
			Rider: profile.Rider{
				Email: "paolo@example.it", Name: "Paolo", Age: intp(52),
				ExperienceLevel: profile.LevelIntermediate,
				Location:        "Torino",
			},
			Password: DemoPassword,
		},
	}
}

// Seed stores every fixture rider
func (s *Store) Seed(riders []SeedRider) error {
	for _, sr := range riders {
		created, err := s.CreateUser(sr.Rider, sr.Password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", sr.Rider.Email, err)
		}
		s.mu.Lock()
		acc := s.accounts[created.ID]
		acc.likesBack = sr.LikesBack
		acc.autoReply = sr.AutoReply
		s.mu.Unlock()
	}
	return nil
}

// internal/profile/models.go

package profile

import (
	"fmt"
	"strings"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
)

// ExperienceLevel is a rider's self-declared gravel experience
type ExperienceLevel string

const (
	LevelNone         ExperienceLevel = ""
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelExpert       ExperienceLevel = "expert"
)

// ExperienceLevels lists the selectable levels in display order
var ExperienceLevels = []ExperienceLevel{LevelBeginner, LevelIntermediate, LevelExpert}

// Label returns the Italian display label
func (l ExperienceLevel) Label() string {
	switch l {
	case LevelBeginner:
		return "Principiante"
	case LevelIntermediate:
		return "Intermedio"
	case LevelExpert:
		return "Esperto"
	default:
		return "Tutti"
	}
}

// Zones offered by the discovery filter. Zone stays free text on the wire.
var Zones = []string{
	"Toscana",
	"Lombardia",
	"Veneto",
	"Emilia-Romagna",
	"Piemonte",
	"Lazio",
	"Trentino",
	"Sardegna",
	"Sicilia",
}

// Rider is a read-only snapshot of a user as returned by the API.
// Candidates, match counterparts and the session identity all use it.
type Rider struct {
	ID               string          `json:"id"`
	Email            string          `json:"email,omitempty"`
	Name             string          `json:"name"`
	Bio              string          `json:"bio,omitempty"`
	ProfilePicture   string          `json:"profile_picture,omitempty"`
	ExperienceLevel  ExperienceLevel `json:"experience_level,omitempty"`
	AvgDistance      *int            `json:"avg_distance,omitempty"` // km
	PreferredZone    string          `json:"preferred_zone,omitempty"`
	Location         string          `json:"location,omitempty"`
	Age              *int            `json:"age,omitempty"`
	ProfileCompleted bool            `json:"profile_completed"`
	CreatedAt        utils.Timestamp `json:"created_at"`
}

// IsZero reports whether r is the empty snapshot
func (r Rider) IsZero() bool {
	return r.ID == ""
}

// Headline renders "Name, 34" or just the name when age is unknown
func (r Rider) Headline() string {
	if r.Age == nil {
		return r.Name
	}
	return fmt.Sprintf("%s, %d", r.Name, *r.Age)
}

// Summary is the one-line riding profile shown under the headline
func (r Rider) Summary() string {
	parts := make([]string, 0, 3)
	if r.ExperienceLevel != LevelNone {
		parts = append(parts, r.ExperienceLevel.Label())
	}
	if r.AvgDistance != nil {
		parts = append(parts, fmt.Sprintf("~%d km", *r.AvgDistance))
	}
	zone := r.PreferredZone
	if zone == "" {
		zone = r.Location
	}
	if zone != "" {
		parts = append(parts, zone)
	}
	return strings.Join(parts, " · ")
}

package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/alumnihub/internal/app/services"
)

func TestDefaultBadgeCriteriaCompile(t *testing.T) {
	names := map[string]bool{}
	for _, b := range DefaultBadges {
		assert.NoError(t, services.ValidateCriteria(b.Criteria), b.Name)
		assert.False(t, names[b.Name], "duplicate badge %s", b.Name)
		names[b.Name] = true
	}
}

func TestDefaultSkillsAreUnique(t *testing.T) {
	names := map[string]bool{}
	for _, s := range DefaultSkills {
		assert.False(t, names[s.Name], "duplicate skill %s", s.Name)
		assert.True(t, s.DifficultyLevel >= 1 && s.DifficultyLevel <= 5, s.Name)
		names[s.Name] = true
	}
}

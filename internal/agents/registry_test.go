package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(nil, Timeouts{
		Default:  10 * time.Second,
		PerAgent: map[string]time.Duration{models.SectionHypothesis: 5 * time.Second},
	}, zap.NewNop())
}

func TestRegistryCanonicalOrder(t *testing.T) {
	reg := testRegistry(t)
	assert.Equal(t, []string{
		models.SectionClinical, models.SectionLiterature, models.SectionMarket,
		models.SectionPatent, models.SectionRegulatory, models.SectionSafety,
		models.SectionOperations, models.SectionMOA, models.SectionPPI,
		models.SectionSimilarity, models.SectionHypothesis,
	}, reg.Names())
}

func TestRegistryGet(t *testing.T) {
	reg := testRegistry(t)

	a, err := reg.Get(models.SectionMOA)
	require.NoError(t, err)
	assert.Equal(t, models.SectionMOA, a.Name())

	_, err = reg.Get("genomics")
	assert.Error(t, err)
}

func TestSpecsCarryDependencies(t *testing.T) {
	specs := testRegistry(t).Specs()
	byName := map[string]Spec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	assert.Empty(t, byName[models.SectionClinical].DependsOn)
	assert.Equal(t, []string{models.SectionMOA}, byName[models.SectionPPI].DependsOn)
	assert.ElementsMatch(t, []string{
		models.SectionMOA, models.SectionPPI, models.SectionSimilarity,
		models.SectionClinical, models.SectionLiterature,
		models.SectionSafety, models.SectionMarket,
	}, byName[models.SectionHypothesis].DependsOn)
}

func TestTimeoutOverrides(t *testing.T) {
	specs := testRegistry(t).Specs()
	byName := map[string]Spec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	assert.Equal(t, 10*time.Second, byName[models.SectionClinical].Timeout)
	assert.Equal(t, 5*time.Second, byName[models.SectionHypothesis].Timeout)
}

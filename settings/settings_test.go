package settings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/settings"
)

func TestNewHasDocumentedDefaults(t *testing.T) {
	s := settings.New()
	require.Equal(t, settings.AlgorithmBdd, s.Algorithm())
	require.Equal(t, settings.ApproximationNone, s.Approximation())
	require.Equal(t, 20, s.LimitOrder())
	require.Equal(t, 372, s.Seed())
	require.Equal(t, 1000, s.NumTrials())
	require.Equal(t, 20, s.NumQuantiles())
	require.Equal(t, 20, s.NumBins())
	require.InDelta(t, 8760, s.MissionTime(), 0)
	require.InDelta(t, 0, s.TimeStep(), 0)
	require.InDelta(t, 1e-20, s.CutOff(), 0)
	require.Equal(t, 2, s.CompilationLevel())
	require.False(t, s.RequiresProducts())
}

func TestWithAlgorithmName(t *testing.T) {
	s := settings.New()
	_, err := s.WithAlgorithmName("zbdd")
	require.NoError(t, err)
	require.Equal(t, settings.AlgorithmZbdd, s.Algorithm())

	_, err = s.WithAlgorithmName("nonsense")
	require.ErrorIs(t, err, settings.ErrInvalidAlgorithm)
}

func TestWithApproximationName(t *testing.T) {
	s := settings.New()
	_, err := s.WithApproximationName("mcub")
	require.NoError(t, err)
	require.Equal(t, settings.ApproximationMcub, s.Approximation())

	_, err = s.WithApproximationName("bogus")
	require.ErrorIs(t, err, settings.ErrInvalidApproximation)
}

func TestPrimeImplicantsRequireBdd(t *testing.T) {
	s := settings.New()
	_, err := s.WithAlgorithmName("mocus")
	require.NoError(t, err)
	_, err = s.WithPrimeImplicants(true)
	require.ErrorIs(t, err, settings.ErrPrimeImplicantsRequireBdd)
}

func TestPrimeImplicantsClearsApproximation(t *testing.T) {
	s := settings.New()
	_, err := s.WithApproximation(settings.ApproximationRareEvent)
	require.NoError(t, err)
	_, err = s.WithPrimeImplicants(true)
	require.NoError(t, err)
	require.Equal(t, settings.ApproximationNone, s.Approximation())
}

func TestLimitOrderRejectsNegative(t *testing.T) {
	s := settings.New()
	_, err := s.WithLimitOrder(-1)
	require.ErrorIs(t, err, settings.ErrNegativeLimitOrder)
}

func TestCutOffRejectsOutOfRange(t *testing.T) {
	s := settings.New()
	_, err := s.WithCutOff(1.5)
	require.ErrorIs(t, err, settings.ErrCutOffRange)
	_, err = s.WithCutOff(-0.1)
	require.ErrorIs(t, err, settings.ErrCutOffRange)
}

func TestNumQuantilesAndBinsAndTrialsRejectNonPositive(t *testing.T) {
	s := settings.New()
	_, err := s.WithNumQuantiles(0)
	require.ErrorIs(t, err, settings.ErrNonPositiveQuantiles)
	_, err = s.WithNumBins(0)
	require.ErrorIs(t, err, settings.ErrNonPositiveBins)
	_, err = s.WithNumTrials(0)
	require.ErrorIs(t, err, settings.ErrNonPositiveTrials)
}

func TestSeedRejectsNegative(t *testing.T) {
	s := settings.New()
	_, err := s.WithSeed(-1)
	require.ErrorIs(t, err, settings.ErrNegativeSeed)
}

func TestMissionTimeAndTimeStepRejectNegative(t *testing.T) {
	s := settings.New()
	_, err := s.WithMissionTime(-1)
	require.ErrorIs(t, err, settings.ErrNegativeMissionTime)
	_, err = s.WithTimeStep(-1)
	require.ErrorIs(t, err, settings.ErrNegativeTimeStep)
}

func TestSafetyIntegrityLevelsRequiresTimeStep(t *testing.T) {
	s := settings.New()
	_, err := s.WithSafetyIntegrityLevels(true)
	require.ErrorIs(t, err, settings.ErrTimeStepRequiredForSil)

	_, err = s.WithTimeStep(24)
	require.NoError(t, err)
	_, err = s.WithSafetyIntegrityLevels(true)
	require.NoError(t, err)
	require.True(t, s.ProbabilityAnalysis())
}

func TestDisablingTimeStepRejectedWhileSilActive(t *testing.T) {
	s := settings.New()
	_, err := s.WithTimeStep(24)
	require.NoError(t, err)
	_, err = s.WithSafetyIntegrityLevels(true)
	require.NoError(t, err)

	_, err = s.WithTimeStep(0)
	require.ErrorIs(t, err, settings.ErrTimeStepRequiredForSil)
}

func TestProbabilityAnalysisPinnedOnByDependents(t *testing.T) {
	s := settings.New()
	s.WithImportanceAnalysis(true)
	require.True(t, s.ProbabilityAnalysis())

	s.WithProbabilityAnalysis(false)
	require.True(t, s.ProbabilityAnalysis(), "importance analysis should keep probability analysis pinned on")

	s.WithImportanceAnalysis(false)
	s.WithProbabilityAnalysis(false)
	require.False(t, s.ProbabilityAnalysis())
}

func TestUncertaintyAnalysisImpliesProbabilityAnalysis(t *testing.T) {
	s := settings.New()
	s.WithUncertaintyAnalysis(true)
	require.True(t, s.ProbabilityAnalysis())
}

func TestRequiresProductsMatrix(t *testing.T) {
	s := settings.New()
	require.False(t, s.RequiresProducts(), "exact BDD probability needs no product enumeration")

	_, err := s.WithApproximation(settings.ApproximationRareEvent)
	require.NoError(t, err)
	require.True(t, s.RequiresProducts(), "approximations rely on cut sets")

	s2 := settings.New()
	_, err = s2.WithAlgorithmName("zbdd")
	require.NoError(t, err)
	require.True(t, s2.RequiresProducts(), "non-BDD algorithms always require products")

	s3 := settings.New()
	s3.WithImportanceAnalysis(true)
	require.True(t, s3.RequiresProducts())
}

func TestCompilationLevelClamps(t *testing.T) {
	s := settings.New()
	s.WithCompilationLevel(-5)
	require.Equal(t, 0, s.CompilationLevel())
	s.WithCompilationLevel(42)
	require.Equal(t, 8, s.CompilationLevel())
}

func TestInputFilesCopiesSlice(t *testing.T) {
	s := settings.New()
	files := []string{"a.xml", "b.xml"}
	s.WithInputFiles(files)
	files[0] = "mutated.xml"
	require.Equal(t, "a.xml", s.InputFiles()[0])
}

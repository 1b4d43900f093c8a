package services

import (
	"context"
	"errors"
	"testing"

	"readiness/internal/logging"
	"readiness/internal/models"

	"github.com/stretchr/testify/require"
)

type panickingPlatform struct {
	StaticPlatform
}

func (p *panickingPlatform) TPM(context.Context) (*models.TPMInfo, error) {
	panic("tpm driver crashed")
}

func TestCollectAllFacts(t *testing.T) {
	want := passingFacts()
	got := Collect(context.Background(), &StaticPlatform{Facts: want}, logging.Discard())
	require.Equal(t, want, got)
}

func TestCollectDegradesFailedQueries(t *testing.T) {
	p := &StaticPlatform{
		Facts: passingFacts(),
		Errs: map[models.Facet]error{
			models.FacetTPM:        errors.New("access denied"),
			models.FacetSecureBoot: errors.New("key not found"),
		},
	}

	facts := Collect(context.Background(), p, logging.Discard())
	require.Nil(t, facts.TPM)
	require.Nil(t, facts.SecureBoot)
	require.NotNil(t, facts.Processor)
	require.NotNil(t, facts.OSVersion)

	result := Evaluate(facts)
	require.Equal(t, "Secure Boot, TPM, ", result.ReturnReason)
}

func TestCollectRecoversFromPanics(t *testing.T) {
	p := &panickingPlatform{StaticPlatform{Facts: passingFacts()}}

	facts := Collect(context.Background(), p, logging.Discard())
	require.Nil(t, facts.TPM)
	require.NotNil(t, facts.Memory)

	result := Evaluate(facts)
	require.Equal(t, 1, result.ReturnCode)
	require.Equal(t, "TPM, ", result.ReturnReason)
}

func TestStaticPlatformReturnsCopies(t *testing.T) {
	p := &StaticPlatform{Facts: passingFacts()}
	mem, err := p.Memory(context.Background())
	require.NoError(t, err)
	mem.TotalBytes = 0
	require.NotZero(t, p.Facts.Memory.TotalBytes)

	p.Facts.Graphics = nil
	_, err = p.Graphics(context.Background())
	require.ErrorIs(t, err, errFactAbsent)
}

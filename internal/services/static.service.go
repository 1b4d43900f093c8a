package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"readiness/internal/models"
)

var errFactAbsent = errors.New("fact not recorded")

// StaticPlatform serves previously recorded facts. Facts left nil are
// reported as absent; Errs forces a query error for a facet.
type StaticPlatform struct {
	Facts models.HostFacts
	Errs  map[models.Facet]error
}

var _ Platform = (*StaticPlatform)(nil)

// LoadFactsFile reads a HostFacts JSON file, as written by the facts command
func LoadFactsFile(path string) (*StaticPlatform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts file: %w", err)
	}
	var facts models.HostFacts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("failed to parse facts file %s: %w", path, err)
	}
	return &StaticPlatform{Facts: facts}, nil
}

func staticFact[T any](s *StaticPlatform, f models.Facet, v *T) (*T, error) {
	if err := s.Errs[f]; err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errFactAbsent
	}
	c := *v
	return &c, nil
}

func (s *StaticPlatform) Processor(context.Context) (*models.ProcessorInfo, error) {
	return staticFact(s, models.FacetProcessor, s.Facts.Processor)
}

func (s *StaticPlatform) Memory(context.Context) (*models.MemoryInfo, error) {
	return staticFact(s, models.FacetMemory, s.Facts.Memory)
}

func (s *StaticPlatform) Storage(context.Context) (*models.StorageInfo, error) {
	return staticFact(s, models.FacetStorage, s.Facts.Storage)
}

func (s *StaticPlatform) Graphics(context.Context) (*models.GraphicsInfo, error) {
	return staticFact(s, models.FacetGraphics, s.Facts.Graphics)
}

func (s *StaticPlatform) SecureBoot(context.Context) (*models.SecureBootInfo, error) {
	return staticFact(s, models.FacetSecureBoot, s.Facts.SecureBoot)
}

func (s *StaticPlatform) TPM(context.Context) (*models.TPMInfo, error) {
	return staticFact(s, models.FacetTPM, s.Facts.TPM)
}

func (s *StaticPlatform) OSVersion(context.Context) (*models.OSVersionInfo, error) {
	return staticFact(s, models.FacetOSVersion, s.Facts.OSVersion)
}

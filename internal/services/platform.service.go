package services

import (
	"context"

	"readiness/internal/models"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Platform exposes one read-only query per hardware/firmware fact.
// An error means the fact is absent; callers never abort on it.
type Platform interface {
	Processor(ctx context.Context) (*models.ProcessorInfo, error)
	Memory(ctx context.Context) (*models.MemoryInfo, error)
	Storage(ctx context.Context) (*models.StorageInfo, error)
	Graphics(ctx context.Context) (*models.GraphicsInfo, error)
	SecureBoot(ctx context.Context) (*models.SecureBootInfo, error)
	TPM(ctx context.Context) (*models.TPMInfo, error)
	OSVersion(ctx context.Context) (*models.OSVersionInfo, error)
}

// Collect queries every fact concurrently. Failed queries are logged and
// recorded as absent, so Collect always returns a complete HostFacts value.
func Collect(ctx context.Context, p Platform, log logrus.FieldLogger) models.HostFacts {
	var facts models.HostFacts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		facts.Processor = degrade(log, models.FacetProcessor, func() (*models.ProcessorInfo, error) { return p.Processor(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.Memory = degrade(log, models.FacetMemory, func() (*models.MemoryInfo, error) { return p.Memory(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.Storage = degrade(log, models.FacetStorage, func() (*models.StorageInfo, error) { return p.Storage(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.Graphics = degrade(log, models.FacetGraphics, func() (*models.GraphicsInfo, error) { return p.Graphics(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.SecureBoot = degrade(log, models.FacetSecureBoot, func() (*models.SecureBootInfo, error) { return p.SecureBoot(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.TPM = degrade(log, models.FacetTPM, func() (*models.TPMInfo, error) { return p.TPM(gctx) })
		return nil
	})
	g.Go(func() error {
		facts.OSVersion = degrade(log, models.FacetOSVersion, func() (*models.OSVersionInfo, error) { return p.OSVersion(gctx) })
		return nil
	})

	// Every goroutine returns nil; Wait is only a join point.
	_ = g.Wait()

	logFacts(log, facts)
	return facts
}

// degrade runs a query and turns errors and panics into an absent fact
func degrade[T any](log logrus.FieldLogger, facet models.Facet, query func() (*T, error)) (v *T) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("facet", facet.Name()).Warnf("Could not collect fact: %v", r)
			v = nil
		}
	}()

	v, err := query()
	if err != nil {
		log.WithField("facet", facet.Name()).Warnf("Could not collect fact: %v", err)
		return nil
	}
	return v
}

func logFacts(log logrus.FieldLogger, facts models.HostFacts) {
	fields := logrus.Fields{}
	if facts.Memory != nil {
		fields["memory"] = units.BytesSize(float64(facts.Memory.TotalBytes))
	}
	if facts.Storage != nil {
		fields["storage_free"] = units.BytesSize(float64(facts.Storage.FreeBytes))
		fields["storage_path"] = facts.Storage.Path
	}
	if facts.Processor != nil {
		fields["cpu"] = facts.Processor.Caption
	}
	log.WithFields(fields).Debug("Host facts collected")
}

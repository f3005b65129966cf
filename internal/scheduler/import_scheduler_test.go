package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImports struct {
	mu      sync.Mutex
	calls   []string
	err     error
	release chan struct{}
}

func (f *fakeImports) Import(ctx context.Context, source, imageDir string) (*service.ImportReport, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source+"|"+imageDir)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.ImportReport{ProductsProcessed: 2, ProductsCreated: 1}, nil
}

func (f *fakeImports) ImportRows(ctx context.Context, rows []importer.Row, source, imageDir string) (*service.ImportReport, error) {
	return nil, errors.New("not used")
}

func (f *fakeImports) RecentRuns(limit int) ([]model.ImportRun, error) {
	return nil, nil
}

func (f *fakeImports) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestImportScheduler_DisabledWithoutSchedule(t *testing.T) {
	imports := &fakeImports{}
	s := NewImportScheduler(imports, config.ImportConfig{Source: "products.csv"})

	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, imports.callCount())
}

func TestImportScheduler_RequiresSource(t *testing.T) {
	s := NewImportScheduler(&fakeImports{}, config.ImportConfig{Schedule: "@daily"})
	assert.ErrorIs(t, s.Start(), ErrNoImportSource)
}

func TestImportScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewImportScheduler(&fakeImports{}, config.ImportConfig{Schedule: "every now and then", Source: "products.csv"})
	assert.Error(t, s.Start())
}

func TestImportScheduler_RunOnce(t *testing.T) {
	imports := &fakeImports{}
	s := NewImportScheduler(imports, config.ImportConfig{Schedule: "@daily", Source: "products.csv", ImageDir: "images"})

	s.RunOnce()
	require.Equal(t, 1, imports.callCount())
	assert.Equal(t, "products.csv|images", imports.calls[0])

	imports.err = errors.New("file missing")
	s.RunOnce()
	assert.Equal(t, 2, imports.callCount())
}

func TestImportScheduler_SkipsOverlappingRuns(t *testing.T) {
	imports := &fakeImports{release: make(chan struct{})}
	s := NewImportScheduler(imports, config.ImportConfig{Schedule: "@daily", Source: "products.csv"})

	done := make(chan struct{})
	go func() {
		s.RunOnce()
		close(done)
	}()

	require.Eventually(t, func() bool { return imports.callCount() == 1 }, time.Second, 5*time.Millisecond)
	s.RunOnce()
	assert.Equal(t, 1, imports.callCount())

	close(imports.release)
	<-done
}

package scheduler

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinDataCollector/internal/model"
)

type fakeCleaner struct {
	ages []time.Duration
	err  error
}

func (f *fakeCleaner) CleanupOlderThan(age time.Duration) (*model.DeleteReport, error) {
	f.ages = append(f.ages, age)
	if f.err != nil {
		return nil, f.err
	}
	return &model.DeleteReport{Deleted: 2}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(&fakeCleaner{}, 30, quietLogger())
	require.NoError(t, s.RegisterAll("0 0 3 * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRegisterAll_Disabled(t *testing.T) {
	s := NewScheduler(&fakeCleaner{}, 0, quietLogger())
	require.NoError(t, s.RegisterAll("0 0 3 * * *"))
	assert.Empty(t, s.Cron.Entries())
}

func TestRegisterAll_BadSpec(t *testing.T) {
	s := NewScheduler(&fakeCleaner{}, 7, quietLogger())
	assert.Error(t, s.RegisterAll("every night"))
}

func TestRunCleanupNow(t *testing.T) {
	c := &fakeCleaner{}
	s := NewScheduler(c, 7, quietLogger())
	s.RunCleanupNow()
	assert.Equal(t, []time.Duration{7 * 24 * time.Hour}, c.ages)

	c.err = errors.New("disk gone")
	assert.NotPanics(t, s.RunCleanupNow)
}

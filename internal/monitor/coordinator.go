package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/halcyon-labs/dermatrack/internal/db"
	"github.com/halcyon-labs/dermatrack/internal/models"
	"github.com/halcyon-labs/dermatrack/internal/services"
	"github.com/halcyon-labs/dermatrack/internal/storage"
)

const defaultReadyTimeout = 10 * time.Second
const defaultPollInterval = 60 * time.Second

// Coordinator owns the lifecycle of monitored conditions and progress
// entries: creation, check-in scheduling, retried persistence, and the
// per-condition watch loops. One instance per process, constructed in
// main and injected wherever it is needed.
type Coordinator struct {
	Retry        RetryConfig
	ReadyTimeout time.Duration
	PollInterval time.Duration

	gate       *Gate
	conditions *db.ConditionRepository
	entries    *db.ProgressEntryRepository
	blobs      storage.BlobStore
	bus        *conditionEventBus

	lifecycle context.Context
	shutdown  context.CancelFunc
	watchers  watcherRegistry
}

// ProgressEntryInput carries one check-in's payload into
// AddProgressEntry.
type ProgressEntryInput struct {
	ImageURL    string
	Confidence  float64
	Notes       string
	Symptoms    []string
	Improvement string
	Insights    models.Insights
}

func NewCoordinator(gate *Gate, repositories *db.Repositories, blobs storage.BlobStore) *Coordinator {
	lifecycle, shutdown := context.WithCancel(context.Background())
	return &Coordinator{
		Retry:        DefaultRetryConfig(),
		ReadyTimeout: defaultReadyTimeout,
		PollInterval: defaultPollInterval,
		gate:         gate,
		conditions:   repositories.Conditions,
		entries:      repositories.Entries,
		blobs:        blobs,
		bus:          newConditionEventBus(),
		lifecycle:    lifecycle,
		shutdown:     shutdown,
		watchers:     newWatcherRegistry(),
	}
}

// Close stops every watch loop. Pending writes are unaffected.
func (coordinator *Coordinator) Close() {
	coordinator.shutdown()
	coordinator.watchers.cancelAll()
}

// StartMonitoring creates a tracking record for a diagnosed condition
// and returns its id. Benign or low-confidence diagnoses are not
// monitorable. The write waits for the gate's readiness signal, with a
// deadline, then goes through the retry path.
func (coordinator *Coordinator) StartMonitoring(ctx context.Context, callerID uint, userID uint, diseaseName string, initialImage string, initialConfidence float64, frequency string) (uint, error) {
	if callerID != userID {
		return 0, ErrUserMismatch
	}

	interval, validFrequency := models.CheckInInterval(frequency)
	if !validFrequency {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
	if services.IsBenignSignal(diseaseName, initialConfidence) {
		return 0, fmt.Errorf("%w: %q at confidence %.2f", ErrNotMonitorable, diseaseName, initialConfidence)
	}

	if err := coordinator.gate.WaitReady(ctx, coordinator.ReadyTimeout); err != nil {
		return 0, err
	}

	now := time.Now()
	condition := models.MonitoredCondition{
		UserID:            userID,
		DiseaseName:       diseaseName,
		StartDate:         now,
		Status:            models.StatusActive,
		InitialImage:      initialImage,
		InitialConfidence: initialConfidence,
		CheckInFrequency:  frequency,
		NextCheckInDue:    now.Add(interval),
	}

	err := coordinator.runWrite(ctx, func(ctx context.Context) error {
		fresh := condition
		if err := coordinator.conditions.Create(ctx, &fresh); err != nil {
			return err
		}
		condition = fresh
		return nil
	})
	if err != nil {
		return 0, err
	}

	coordinator.watchCondition(condition.ID)
	coordinator.bus.publish(ConditionEvent{Kind: EventConditionCreated, ConditionID: condition.ID, At: now})

	return condition.ID, nil
}

// AddProgressEntry records one check-in: the entry insert and the
// parent condition's last-check-in/next-due refresh form a single
// retry unit, so a transient failure re-runs both together.
func (coordinator *Coordinator) AddProgressEntry(ctx context.Context, callerID uint, userID uint, conditionID uint, input ProgressEntryInput) error {
	if callerID != userID {
		return ErrUserMismatch
	}
	if !models.ValidImprovement(input.Improvement) {
		return fmt.Errorf("%w: %q", ErrInvalidImprovement, input.Improvement)
	}

	condition, err := coordinator.loadOwnedCondition(ctx, callerID, conditionID)
	if err != nil {
		return err
	}

	interval, validFrequency := models.CheckInInterval(condition.CheckInFrequency)
	if !validFrequency {
		interval = 24 * time.Hour
	}

	now := time.Now()
	entry := models.ProgressEntry{
		UserID:      userID,
		ConditionID: conditionID,
		ImageURL:    input.ImageURL,
		RecordedAt:  now,
		Confidence:  input.Confidence,
		Notes:       input.Notes,
		Symptoms:    input.Symptoms,
		Improvement: input.Improvement,
		Insights:    input.Insights,
	}

	err = coordinator.runWrite(ctx, func(ctx context.Context) error {
		fresh := entry
		return coordinator.conditions.RecordCheckIn(ctx, &fresh, now.Add(interval))
	})
	if err != nil {
		return err
	}

	coordinator.bus.publish(ConditionEvent{Kind: EventCheckInRecorded, ConditionID: conditionID, At: now})
	return nil
}

// GetCondition returns one condition after the ownership check.
func (coordinator *Coordinator) GetCondition(ctx context.Context, callerID uint, conditionID uint) (models.MonitoredCondition, error) {
	return coordinator.loadOwnedCondition(ctx, callerID, conditionID)
}

// GetConditionProgress returns the caller's check-ins for one
// condition, newest first.
func (coordinator *Coordinator) GetConditionProgress(ctx context.Context, callerID uint, conditionID uint) ([]models.ProgressEntry, error) {
	if err := coordinator.requireReady(); err != nil {
		return nil, err
	}
	return coordinator.entries.ListByConditionAndUser(ctx, conditionID, callerID)
}

// GetUserActiveConditions returns the caller's active conditions.
func (coordinator *Coordinator) GetUserActiveConditions(ctx context.Context, callerID uint, userID uint) ([]models.MonitoredCondition, error) {
	if callerID != userID {
		return nil, ErrUserMismatch
	}
	if err := coordinator.requireReady(); err != nil {
		return nil, err
	}
	return coordinator.conditions.ListActiveByUser(ctx, userID)
}

func (coordinator *Coordinator) UpdateConditionStatus(ctx context.Context, callerID uint, conditionID uint, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if _, err := coordinator.loadOwnedCondition(ctx, callerID, conditionID); err != nil {
		return err
	}

	err := coordinator.runWrite(ctx, func(ctx context.Context) error {
		return coordinator.conditions.UpdateByID(ctx, conditionID, map[string]any{"status": status})
	})
	if err != nil {
		return err
	}

	coordinator.bus.publish(ConditionEvent{Kind: EventStatusChanged, ConditionID: conditionID, At: time.Now()})
	return nil
}

// UpdateConditionImage replaces the condition's image in the blob
// store, then points the record at the new URL.
func (coordinator *Coordinator) UpdateConditionImage(ctx context.Context, callerID uint, conditionID uint, imageData []byte, fileName string) (string, error) {
	condition, err := coordinator.loadOwnedCondition(ctx, callerID, conditionID)
	if err != nil {
		return "", err
	}

	newImageURL, err := coordinator.blobs.Replace(ctx, condition.InitialImage, imageData, fileName, condition.UserID)
	if err != nil {
		return "", fmt.Errorf("replace condition image: %w", err)
	}

	err = coordinator.runWrite(ctx, func(ctx context.Context) error {
		return coordinator.conditions.UpdateByID(ctx, conditionID, map[string]any{"initial_image": newImageURL})
	})
	if err != nil {
		return "", err
	}

	coordinator.bus.publish(ConditionEvent{Kind: EventImageUpdated, ConditionID: conditionID, At: time.Now()})
	return newImageURL, nil
}

// DeleteCondition removes the condition, its progress entries, and
// (best effort) every stored image. Blob failures are logged and do
// not abort the delete.
func (coordinator *Coordinator) DeleteCondition(ctx context.Context, callerID uint, conditionID uint) error {
	condition, err := coordinator.loadOwnedCondition(ctx, callerID, conditionID)
	if err != nil {
		return err
	}

	entries, err := coordinator.entries.ListByConditionAndUser(ctx, conditionID, callerID)
	if err != nil {
		return err
	}

	if condition.InitialImage != "" {
		if err := coordinator.blobs.Delete(ctx, condition.InitialImage); err != nil {
			log.Printf("monitor: delete initial image for condition %d failed: %v", conditionID, err)
		}
	}
	for _, entry := range entries {
		if entry.ImageURL == "" {
			continue
		}
		if err := coordinator.blobs.Delete(ctx, entry.ImageURL); err != nil {
			log.Printf("monitor: delete check-in image for condition %d failed: %v", conditionID, err)
		}
	}

	err = coordinator.runWrite(ctx, func(ctx context.Context) error {
		return coordinator.conditions.DeleteWithEntries(ctx, conditionID)
	})
	if err != nil {
		return err
	}

	coordinator.bus.publish(ConditionEvent{Kind: EventConditionDeleted, ConditionID: conditionID, At: time.Now()})
	coordinator.unwatchCondition(conditionID)
	coordinator.bus.dropCondition(conditionID)
	return nil
}

// Subscribe returns a live event stream for one condition. The second
// return value cancels the subscription.
func (coordinator *Coordinator) Subscribe(conditionID uint) (<-chan ConditionEvent, func()) {
	return coordinator.bus.subscribe(conditionID)
}

func (coordinator *Coordinator) requireReady() error {
	if !coordinator.gate.Ready() {
		return ErrStoreNotReady
	}
	return nil
}

func (coordinator *Coordinator) loadOwnedCondition(ctx context.Context, callerID uint, conditionID uint) (models.MonitoredCondition, error) {
	if err := coordinator.requireReady(); err != nil {
		return models.MonitoredCondition{}, err
	}

	condition, found, err := coordinator.conditions.FindByID(ctx, conditionID)
	if err != nil {
		return models.MonitoredCondition{}, err
	}
	if !found {
		return models.MonitoredCondition{}, fmt.Errorf("%w: id %d", ErrConditionNotFound, conditionID)
	}
	if condition.UserID != callerID {
		return models.MonitoredCondition{}, ErrUserMismatch
	}
	return condition, nil
}

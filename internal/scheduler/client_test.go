package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "test" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("NewClient() expected error without redis url")
	}
}

func TestClientSchedulesReminder(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	remindAt := time.Now().Add(time.Hour)
	err = client.ScheduleAppointmentReminder(context.Background(), uuid.New(), "2026-03-12", "10:00", remindAt)
	if err != nil {
		t.Fatalf("ScheduleAppointmentReminder() error = %v", err)
	}

	// asynq stores scheduled tasks under its own keyspace.
	keys := srv.Keys()
	if len(keys) == 0 {
		t.Fatal("no keys written to redis")
	}
}

func TestParseReminderPayloadRoundTrip(t *testing.T) {
	appointmentID := uuid.New()
	task, err := NewAppointmentReminderTask(AppointmentReminderPayload{
		AppointmentID: appointmentID.String(),
		VisitDate:     "2026-03-12",
		SlotTime:      "10:00",
	})
	if err != nil {
		t.Fatalf("NewAppointmentReminderTask() error = %v", err)
	}

	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseAppointmentReminderPayload() error = %v", err)
	}
	if payload.AppointmentID != appointmentID.String() {
		t.Errorf("appointment id = %s, want %s", payload.AppointmentID, appointmentID)
	}
	if payload.VisitDate != "2026-03-12" || payload.SlotTime != "10:00" {
		t.Errorf("slot = %s %s, want 2026-03-12 10:00", payload.VisitDate, payload.SlotTime)
	}
}

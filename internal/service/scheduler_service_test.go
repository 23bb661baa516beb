package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:30", "0 30 8 * * *", false},
		{"00:00", "0 0 0 * * *", false},
		{" 23:59 ", "0 59 23 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"8", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDailySpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("buildDailySpec(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildWeeklySpec(t *testing.T) {
	got, err := buildWeeklySpec(time.Sunday, "23:55")
	if err != nil {
		t.Fatalf("buildWeeklySpec() error = %v", err)
	}
	if got != "0 55 23 * * 0" {
		t.Errorf("buildWeeklySpec() = %q", got)
	}
	if _, err := buildWeeklySpec(time.Weekday(9), "10:00"); err == nil {
		t.Error("expected error for invalid weekday")
	}
}

func TestSchedulerService_Registers(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	if _, err := s.ScheduleDaily("09:00", func() {}); err != nil {
		t.Fatalf("ScheduleDaily() error = %v", err)
	}
	if _, err := s.ScheduleWeekly(time.Sunday, "23:55", func() {}); err != nil {
		t.Fatalf("ScheduleWeekly() error = %v", err)
	}
	if _, err := s.ScheduleDaily("25:00", func() {}); err == nil {
		t.Error("expected error for invalid time")
	}
	if got := s.Entries(); got != 2 {
		t.Errorf("Entries() = %d, want 2", got)
	}
	s.Start()
	s.Stop()
}

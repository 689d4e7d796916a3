package daemon

import (
	"sync"
	"testing"
	"time"
)

func TestCycleRecorder_GetRecordsIn(t *testing.T) {
	type fields struct {
		MaxRecordCount int
		CycleTimes     []time.Time
	}
	type args struct {
		last time.Duration
	}
	tests := []struct {
		name   string
		fields fields
		args   args
		want   int
	}{
		{
			name: "test noncontinuous records",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes: []time.Time{
					time.Now().Add(-time.Second * 6).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 2).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 1).Add(-10 * time.Millisecond),
				},
			},
			args: args{
				last: time.Second * 10,
			},
			want: 2,
		},
		{
			name: "test continuous records",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes: []time.Time{
					time.Now().Add(-time.Second * 6).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 5).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 4).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 3).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 2).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 1).Add(-10 * time.Millisecond),
				},
			},
			args: args{
				last: time.Second * 5,
			},
			want: 4,
		},
		{
			name: "test stale last record",
			fields: fields{
				MaxRecordCount: 10,
				CycleTimes: []time.Time{
					time.Now().Add(-time.Second * 10).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 9).Add(-10 * time.Millisecond),
				},
			},
			args: args{
				last: time.Second * 20,
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CycleRecorder{
				MaxRecordCount: tt.fields.MaxRecordCount,
				CycleTimes:     tt.fields.CycleTimes,
				interval:       time.Second,
				mu:             &sync.Mutex{},
			}
			if got := r.GetRecordsIn(tt.args.last); got != tt.want {
				t.Errorf("GetRecordsIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCycleRecorder_Capacity(t *testing.T) {
	r := NewCycleRecorder(3, time.Second)
	base := time.Now().Add(-10 * time.Second)
	for i := 0; i < 5; i++ {
		r.AddRecord(base.Add(time.Duration(i) * time.Second))
	}

	if len(r.CycleTimes) != 3 {
		t.Fatalf("record count = %d, want 3", len(r.CycleTimes))
	}
	want := base.Add(4 * time.Second).Round(0)
	if !r.GetLastRecord().Equal(want) {
		t.Errorf("GetLastRecord() = %v, want %v", r.GetLastRecord(), want)
	}
}

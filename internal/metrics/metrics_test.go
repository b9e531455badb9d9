package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncProcessesSpawned_IncrementsByPoolLabel(t *testing.T) {
	before := testutil.ToFloat64(ProcessesSpawned.WithLabelValues("shared"))
	IncProcessesSpawned("shared")
	after := testutil.ToFloat64(ProcessesSpawned.WithLabelValues("shared"))
	if after != before+1 {
		t.Fatalf("ProcessesSpawned{pool=shared} = %v, want %v", after, before+1)
	}
}

func TestActiveProcesses_IncAndDec(t *testing.T) {
	before := testutil.ToFloat64(ActiveProcesses)
	IncActiveProcesses()
	IncActiveProcesses()
	DecActiveProcesses()
	after := testutil.ToFloat64(ActiveProcesses)
	if after != before+1 {
		t.Fatalf("ActiveProcesses = %v, want %v", after, before+1)
	}
}

func TestSetBroadcastFanout_RecordsLatestValue(t *testing.T) {
	SetBroadcastFanout(3)
	if got := testutil.ToFloat64(BroadcastFanout); got != 3 {
		t.Fatalf("BroadcastFanout = %v, want 3", got)
	}
	SetBroadcastFanout(0)
	if got := testutil.ToFloat64(BroadcastFanout); got != 0 {
		t.Fatalf("BroadcastFanout = %v, want 0", got)
	}
}

func TestIncError_UsesStableLabelConstants(t *testing.T) {
	before := testutil.ToFloat64(Errors.WithLabelValues(ErrSendClosed))
	IncError(ErrSendClosed)
	after := testutil.ToFloat64(Errors.WithLabelValues(ErrSendClosed))
	if after != before+1 {
		t.Fatalf("Errors{where=send_closed} = %v, want %v", after, before+1)
	}
}

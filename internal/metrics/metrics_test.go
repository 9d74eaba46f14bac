package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRegistry_IncrementCounter(t *testing.T) {
	registry := NewRegistry()

	registry.IncrementCounter("channel_calls_total", nil, "Channel calls")

	counters := registry.GetAllMetrics().Counters
	if counter, exists := counters["channel_calls_total"]; !exists {
		t.Fatal("Expected counter 'channel_calls_total' to exist")
	} else if counter.Value != 1 {
		t.Fatalf("Expected counter value to be 1, got %f", counter.Value)
	}

	labels := map[string]string{"outcome": "success"}
	registry.IncrementCounter("channel_calls_total", labels, "Channel calls")
	registry.IncrementCounter("channel_calls_total", labels, "Channel calls")

	counters = registry.GetAllMetrics().Counters
	if counter, exists := counters["channel_calls_total_outcome:success"]; !exists {
		t.Fatal("Expected labeled counter to exist")
	} else if counter.Value != 2 {
		t.Fatalf("Expected labeled counter value to be 2, got %f", counter.Value)
	}
}

func TestRegistry_AddToCounter(t *testing.T) {
	registry := NewRegistry()

	registry.AddToCounter("http_requests_active", 1, nil, "Active requests")
	registry.AddToCounter("http_requests_active", -1, nil, "Active requests")

	counter := registry.GetAllMetrics().Counters["http_requests_active"]
	if counter.Value != 0 {
		t.Fatalf("Expected counter value to be 0, got %f", counter.Value)
	}
}

func TestRegistry_RecordTimer(t *testing.T) {
	registry := NewRegistry()

	registry.RecordTimer("sms_inbox_query_duration", 100*time.Millisecond, nil, "Inbox query")
	registry.RecordTimer("sms_inbox_query_duration", 200*time.Millisecond, nil, "Inbox query")

	timer, exists := registry.GetAllMetrics().Timers["sms_inbox_query_duration"]
	if !exists {
		t.Fatal("Expected timer to exist")
	}
	if timer.Count != 2 {
		t.Fatalf("Expected timer count to be 2, got %d", timer.Count)
	}
	if timer.Sum != 300 {
		t.Fatalf("Expected timer sum to be 300, got %f", timer.Sum)
	}
	if timer.Min != 100 || timer.Max != 200 {
		t.Fatalf("Expected min 100 and max 200, got %f and %f", timer.Min, timer.Max)
	}
	if timer.Average != 150 {
		t.Fatalf("Expected timer average to be 150, got %f", timer.Average)
	}
}

func TestRegistry_SetGauge(t *testing.T) {
	registry := NewRegistry()

	registry.SetGauge("sms_inbox_rows", 20, nil, "Rows returned")
	registry.SetGauge("sms_inbox_rows", 3, nil, "Rows returned")

	gauge := registry.GetAllMetrics().Gauges["sms_inbox_rows"]
	if gauge.Value != 3 {
		t.Fatalf("Expected gauge value to be 3, got %f", gauge.Value)
	}
	if gauge.Type != Gauge {
		t.Fatalf("Expected gauge type, got %s", gauge.Type)
	}
}

func TestMetricKey_SortsLabels(t *testing.T) {
	a := metricKey("http_responses_total", map[string]string{"method": "POST", "endpoint": "/channels/sms_reader"})
	b := metricKey("http_responses_total", map[string]string{"endpoint": "/channels/sms_reader", "method": "POST"})

	if a != b {
		t.Fatalf("Expected identical keys, got %q and %q", a, b)
	}
	if a != "http_responses_total_endpoint:/channels/sms_reader_method:POST" {
		t.Fatalf("Unexpected key %q", a)
	}
}

func TestCalculatePercentile(t *testing.T) {
	samples := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}

	if p := calculatePercentile(samples, 0.95); p != 10 {
		t.Fatalf("Expected p95 of 10, got %f", p)
	}
	if p := calculatePercentile(samples, 0.5); p != 6 {
		t.Fatalf("Expected p50 of 6, got %f", p)
	}
	if p := calculatePercentile(nil, 0.5); p != 0 {
		t.Fatalf("Expected 0 for empty samples, got %f", p)
	}
	if samples[0] != 10 {
		t.Fatal("Expected input samples to be left unsorted")
	}
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	registry := NewRegistry()
	registry.IncrementCounter("c", map[string]string{"k": "v"}, "")

	snapshot := registry.GetAllMetrics()
	registry.IncrementCounter("c", map[string]string{"k": "v"}, "")

	if snapshot.Counters["c_k:v"].Value != 1 {
		t.Fatalf("Expected snapshot to stay at 1, got %f", snapshot.Counters["c_k:v"].Value)
	}
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.IncrementCounter("concurrent", nil, "")
			registry.RecordTimer("concurrent_timer", time.Millisecond, nil, "")
		}()
	}
	wg.Wait()

	if v := registry.GetAllMetrics().Counters["concurrent"].Value; v != 50 {
		t.Fatalf("Expected 50 increments, got %f", v)
	}
}

func TestGlobalRegistry(t *testing.T) {
	IncrementCounter("global_test_counter", nil, "Global test")

	if _, exists := GetAllMetrics().Counters["global_test_counter"]; !exists {
		t.Fatal("Expected global counter to exist")
	}
	if GetRegistry() != globalRegistry {
		t.Fatal("Expected GetRegistry to return the global registry")
	}
}

package xmetrics

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Total 是某个 component/operation/status 组合的累计值。
type Total struct {
	Component string
	Operation string
	Status    Status
	Count     int64
	Bytes     int64
}

// Recorder 是仅在进程内汇总的 MeterProvider，不导出到外部系统。
type Recorder struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewRecorder 创建 Recorder。
func NewRecorder() *Recorder {
	reader := sdkmetric.NewManualReader()
	return &Recorder{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// MeterProvider 供 [WithMeterProvider] 使用。
func (r *Recorder) MeterProvider() metric.MeterProvider { return r.provider }

// Totals 收集当前累计的操作计数与字节数，按 component、operation、status 排序。
func (r *Recorder) Totals(ctx context.Context) ([]Total, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollect, err)
	}

	byKey := make(map[attribute.Distinct]*Total)
	get := func(set attribute.Set) *Total {
		k := set.Equivalent()
		if t, ok := byKey[k]; ok {
			return t
		}
		t := &Total{
			Component: setValue(set, attrComponent),
			Operation: setValue(set, attrOperation),
			Status:    Status(setValue(set, attrStatus)),
		}
		byKey[k] = t
		return t
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case MetricOperationTotal:
					get(dp.Attributes).Count += dp.Value
				case MetricOperationBytes:
					get(dp.Attributes).Bytes += dp.Value
				}
			}
		}
	}

	out := make([]Total, 0, len(byKey))
	for _, t := range byKey {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if a.Operation != b.Operation {
			return a.Operation < b.Operation
		}
		return a.Status < b.Status
	})
	return out, nil
}

// Shutdown 关闭 provider。
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

func setValue(set attribute.Set, key string) string {
	if v, ok := set.Value(attribute.Key(key)); ok {
		return v.AsString()
	}
	return ""
}

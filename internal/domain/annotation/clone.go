// Where: fnctl/internal/domain/annotation/clone.go
// What: Deep-copy helpers for raw annotations.
// Why: Resources derived from an annotation must never share memory with it.
package annotation

// Clone returns a deep copy of the annotation.
func (a RawTriggerAnnotation) Clone() RawTriggerAnnotation {
	out := a
	out.Labels = CloneStringMap(a.Labels)
	out.VPCConnector = clonePtr(a.VPCConnector)
	out.VPCConnectorEgressSettings = clonePtr(a.VPCConnectorEgressSettings)
	out.IngressSettings = clonePtr(a.IngressSettings)
	out.AvailableMemoryMB = clonePtr(a.AvailableMemoryMB)
	out.Timeout = clonePtr(a.Timeout)
	out.MaxInstances = clonePtr(a.MaxInstances)
	out.MinInstances = clonePtr(a.MinInstances)
	out.Concurrency = clonePtr(a.Concurrency)
	out.ServiceAccountEmail = clonePtr(a.ServiceAccountEmail)
	if a.HTTPSTrigger != nil {
		trigger := HTTPSTrigger{AllowInsecure: clonePtr(a.HTTPSTrigger.AllowInsecure)}
		out.HTTPSTrigger = &trigger
	}
	if a.EventTrigger != nil {
		trigger := *a.EventTrigger
		out.EventTrigger = &trigger
	}
	if a.FailurePolicy != nil {
		policy := FailurePolicy{Retry: cloneAnyMap(a.FailurePolicy.Retry)}
		out.FailurePolicy = &policy
	}
	if a.Schedule != nil {
		schedule := a.Schedule.Clone()
		out.Schedule = &schedule
	}
	out.Regions = CloneStrings(a.Regions)
	out.Invoker = CloneStrings(a.Invoker)
	return out
}

// Clone returns a deep copy of the schedule descriptor.
func (s ScheduleDescriptor) Clone() ScheduleDescriptor {
	out := s
	out.TimeZone = clonePtr(s.TimeZone)
	if s.RetryConfig != nil {
		retry := s.RetryConfig.Clone()
		out.RetryConfig = &retry
	}
	return out
}

// Clone returns a deep copy of the retry configuration.
func (r RetryConfig) Clone() RetryConfig {
	return RetryConfig{
		RetryCount:         clonePtr(r.RetryCount),
		MaxRetryDuration:   clonePtr(r.MaxRetryDuration),
		MinBackoffDuration: clonePtr(r.MinBackoffDuration),
		MaxBackoffDuration: clonePtr(r.MaxBackoffDuration),
		MaxDoublings:       clonePtr(r.MaxDoublings),
	}
}

// CloneStringMap copies a string map, keeping nil as nil.
func CloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, val := range in {
		out[key] = val
	}
	return out
}

// CloneStrings copies a string slice, keeping nil as nil.
func CloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, val := range in {
		if nested, ok := val.(map[string]any); ok {
			out[key] = cloneAnyMap(nested)
			continue
		}
		out[key] = val
	}
	return out
}

func clonePtr[T any](in *T) *T {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

// Where: fnctl/internal/domain/backend/builder.go
// What: Fold raw trigger annotations into a Backend.
// Why: Apply region fan-out, trigger defaults, and schedule wiring in one deterministic place.
package backend

import (
	"fmt"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
)

// StructuralError reports an annotation that does not carry exactly one trigger.
type StructuralError struct {
	Name   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("unexpected annotation for function %q: %s", e.Name, e.Reason)
}

// Builder adds annotation-derived resources to a Backend.
// Warnf receives non-fatal findings; nil discards them.
type Builder struct {
	Warnf func(string)
}

// AddResources appends one function per region of the annotation, plus the
// schedule and topic of scheduled functions. Earlier additions are kept on error.
func (b Builder) AddResources(
	projectID string,
	runtime string,
	raw annotation.RawTriggerAnnotation,
	out *Backend,
) error {
	if out == nil {
		return fmt.Errorf("backend is required")
	}
	regions := raw.Regions
	if len(regions) == 0 {
		regions = []string{DefaultRegion}
	}

	for _, region := range regions {
		// Each region works on its own copy so no output aliases the input.
		annot := raw.Clone()

		trigger, err := b.buildTrigger(annot)
		if err != nil {
			return err
		}

		ids := TargetIds{ID: annot.Name, Region: region, Project: projectID}
		platform := annot.Platform
		if platform == "" {
			platform = PlatformGCFv1
		}
		fn := FunctionSpec{
			TargetIds:  ids,
			Platform:   platform,
			EntryPoint: annot.EntryPoint,
			Runtime:    runtime,
			Trigger:    trigger,
		}

		if annot.VPCConnector != nil {
			connector := *annot.VPCConnector
			if !strings.Contains(connector, "/") {
				connector = fmt.Sprintf("projects/%s/locations/%s/connectors/%s", projectID, region, connector)
			}
			fn.VPCConnector = &connector
		}

		copyPassthrough(&fn, annot)

		if annot.Schedule != nil {
			out.RequireAPI(APIPubSub)
			out.RequireAPI(APIScheduler)

			scheduleID := ScheduleIDForFunction(ids)
			schedule := ScheduleSpec{
				ID:            scheduleID,
				Project:       projectID,
				Schedule:      annot.Schedule.Schedule,
				Transport:     ScheduleTransportPubSub,
				TargetService: ids,
			}
			if annot.Schedule.TimeZone != nil {
				schedule.TimeZone = annot.Schedule.TimeZone
			}
			if annot.Schedule.RetryConfig != nil {
				schedule.RetryConfig = annot.Schedule.RetryConfig
			}
			topic := PubSubSpec{
				ID:      scheduleID,
				Project: projectID,
				Labels: map[string]string{
					ScheduledFunctionLabelKey: ScheduledFunctionLabelValue,
				},
				TargetService: ids,
			}

			// Upstream metadata omits the topic id for scheduled functions.
			if event, ok := fn.Trigger.(EventTrigger); ok {
				event.EventFilters[EventFilterResource] = event.EventFilters[EventFilterResource] + "/" + scheduleID
				fn.Trigger = event
			}

			if fn.Labels == nil {
				fn.Labels = map[string]string{}
			}
			fn.Labels[ScheduledMarkerLabelKey] = ScheduledMarkerLabelValue

			out.Schedules = append(out.Schedules, schedule)
			out.Topics = append(out.Topics, topic)
		}

		out.Functions = append(out.Functions, fn)
	}
	return nil
}

func (b Builder) buildTrigger(annot annotation.RawTriggerAnnotation) (Trigger, error) {
	hasHTTPS := annot.HTTPSTrigger != nil
	hasEvent := annot.EventTrigger != nil
	if hasHTTPS == hasEvent {
		reason := "expected exactly one of httpsTrigger or eventTrigger, found neither"
		if hasHTTPS {
			reason = "expected exactly one of httpsTrigger or eventTrigger, found both"
		}
		return nil, &StructuralError{Name: annot.Name, Reason: reason}
	}

	if hasHTTPS {
		if annot.FailurePolicy != nil {
			b.warnf(fmt.Sprintf(
				"Ignoring retry policy for HTTPS function %s; retries only apply to event-triggered functions",
				annot.Name,
			))
		}
		allowInsecure := annot.Platform == "" || annot.Platform == PlatformGCFv1
		if annot.HTTPSTrigger.AllowInsecure != nil {
			allowInsecure = *annot.HTTPSTrigger.AllowInsecure
		}
		return HTTPSTrigger{AllowInsecure: allowInsecure}, nil
	}

	return EventTrigger{
		EventType: annot.EventTrigger.EventType,
		EventFilters: map[string]string{
			EventFilterResource: annot.EventTrigger.Resource,
		},
		Retry: annot.FailurePolicy != nil,
	}, nil
}

func (b Builder) warnf(message string) {
	if b.Warnf != nil {
		b.Warnf(message)
	}
}

// copyPassthrough assigns optional fields only when the annotation defines them.
func copyPassthrough(fn *FunctionSpec, annot annotation.RawTriggerAnnotation) {
	if annot.Concurrency != nil {
		fn.Concurrency = annot.Concurrency
	}
	if annot.ServiceAccountEmail != nil {
		fn.ServiceAccountEmail = annot.ServiceAccountEmail
	}
	if annot.Labels != nil {
		fn.Labels = annot.Labels
	}
	if annot.VPCConnectorEgressSettings != nil {
		fn.VPCConnectorEgressSettings = annot.VPCConnectorEgressSettings
	}
	if annot.IngressSettings != nil {
		fn.IngressSettings = annot.IngressSettings
	}
	if annot.Timeout != nil {
		fn.Timeout = annot.Timeout
	}
	if annot.MaxInstances != nil {
		fn.MaxInstances = annot.MaxInstances
	}
	if annot.MinInstances != nil {
		fn.MinInstances = annot.MinInstances
	}
	if annot.AvailableMemoryMB != nil {
		fn.AvailableMemoryMB = annot.AvailableMemoryMB
	}
	if annot.Invoker != nil {
		fn.Invoker = annot.Invoker
	}
}

// Where: fnctl/internal/domain/annotation/annotation.go
// What: Raw trigger annotation types emitted by the functions SDK.
// Why: Keep the wire shape of discovered triggers separate from backend resources.
package annotation

// Platform tags understood by the backend builder.
const (
	PlatformGCFv1 = "gcfv1"
	PlatformGCFv2 = "gcfv2"
)

// RawTriggerAnnotation is one trigger record as reported by discovery.
// Optional fields are pointers (or nil-able collections) so that an absent
// field can be told apart from its zero value.
type RawTriggerAnnotation struct {
	Name                       string              `json:"name" yaml:"name"`
	Platform                   string              `json:"platform,omitempty" yaml:"platform,omitempty"`
	Labels                     map[string]string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	EntryPoint                 string              `json:"entryPoint" yaml:"entryPoint"`
	VPCConnector               *string             `json:"vpcConnector,omitempty" yaml:"vpcConnector,omitempty"`
	VPCConnectorEgressSettings *string             `json:"vpcConnectorEgressSettings,omitempty" yaml:"vpcConnectorEgressSettings,omitempty"`
	IngressSettings            *string             `json:"ingressSettings,omitempty" yaml:"ingressSettings,omitempty"`
	AvailableMemoryMB          *int                `json:"availableMemoryMb,omitempty" yaml:"availableMemoryMb,omitempty"`
	Timeout                    *string             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxInstances               *int                `json:"maxInstances,omitempty" yaml:"maxInstances,omitempty"`
	MinInstances               *int                `json:"minInstances,omitempty" yaml:"minInstances,omitempty"`
	Concurrency                *int                `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ServiceAccountEmail        *string             `json:"serviceAccountEmail,omitempty" yaml:"serviceAccountEmail,omitempty"`
	HTTPSTrigger               *HTTPSTrigger       `json:"httpsTrigger,omitempty" yaml:"httpsTrigger,omitempty"`
	EventTrigger               *EventTrigger       `json:"eventTrigger,omitempty" yaml:"eventTrigger,omitempty"`
	FailurePolicy              *FailurePolicy      `json:"failurePolicy,omitempty" yaml:"failurePolicy,omitempty"`
	Schedule                   *ScheduleDescriptor `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Regions                    []string            `json:"regions,omitempty" yaml:"regions,omitempty"`
	Invoker                    []string            `json:"invoker,omitempty" yaml:"invoker,omitempty"`
}

// HTTPSTrigger marks an HTTP-invoked function.
type HTTPSTrigger struct {
	AllowInsecure *bool `json:"allowInsecure,omitempty" yaml:"allowInsecure,omitempty"`
}

// EventTrigger marks an event-delivered function.
type EventTrigger struct {
	EventType string `json:"eventType" yaml:"eventType"`
	Resource  string `json:"resource" yaml:"resource"`
	Service   string `json:"service,omitempty" yaml:"service,omitempty"`
}

// FailurePolicy requests redelivery of failed events. Its presence is what counts.
type FailurePolicy struct {
	Retry map[string]any `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// ScheduleDescriptor describes a time-based trigger. The expression is opaque here.
type ScheduleDescriptor struct {
	Schedule    string       `json:"schedule" yaml:"schedule"`
	TimeZone    *string      `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	RetryConfig *RetryConfig `json:"retryConfig,omitempty" yaml:"retryConfig,omitempty"`
}

// RetryConfig is passed through to the scheduler verbatim.
type RetryConfig struct {
	RetryCount         *int    `json:"retryCount,omitempty" yaml:"retryCount,omitempty"`
	MaxRetryDuration   *string `json:"maxRetryDuration,omitempty" yaml:"maxRetryDuration,omitempty"`
	MinBackoffDuration *string `json:"minBackoffDuration,omitempty" yaml:"minBackoffDuration,omitempty"`
	MaxBackoffDuration *string `json:"maxBackoffDuration,omitempty" yaml:"maxBackoffDuration,omitempty"`
	MaxDoublings       *int    `json:"maxDoublings,omitempty" yaml:"maxDoublings,omitempty"`
}

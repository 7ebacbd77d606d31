// Where: fnctl/internal/domain/backend/backend.go
// What: Desired-backend resource types produced from trigger annotations.
// Why: Give deployment planning a strongly typed view of functions, schedules, and topics.
package backend

import (
	"fmt"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
)

// DefaultRegion is used when an annotation lists no regions.
const DefaultRegion = "us-central1"

// Platform generations.
const (
	PlatformGCFv1 = annotation.PlatformGCFv1
	PlatformGCFv2 = annotation.PlatformGCFv2
)

// Labels and API names attached to scheduled functions.
const (
	ScheduledFunctionLabelKey   = "deployment"
	ScheduledFunctionLabelValue = "firebase-schedule"
	ScheduledMarkerLabelKey     = "deployment-scheduled"
	ScheduledMarkerLabelValue   = "true"

	APIPubSub    = "pubsub"
	APIScheduler = "scheduler"

	ScheduleTransportPubSub = "pubsub"
)

var requiredAPIHosts = map[string]string{
	APIPubSub:    "pubsub.googleapis.com",
	APIScheduler: "cloudscheduler.googleapis.com",
}

// TargetIds identifies a function. The triple is unique within one Backend;
// the id alone is not, since one annotation fans out to several regions.
type TargetIds struct {
	ID      string `json:"id" yaml:"id"`
	Region  string `json:"region" yaml:"region"`
	Project string `json:"project" yaml:"project"`
}

// String renders the fully-qualified function resource name.
func (t TargetIds) String() string {
	return fmt.Sprintf("projects/%s/locations/%s/functions/%s", t.Project, t.Region, t.ID)
}

// Trigger is either an HTTPSTrigger or an EventTrigger.
type Trigger interface {
	triggerKind() string
}

// HTTPSTrigger is the trigger of an HTTP-invoked function.
type HTTPSTrigger struct {
	AllowInsecure bool `json:"allowInsecure" yaml:"allowInsecure"`
}

func (HTTPSTrigger) triggerKind() string { return "https" }

// EventTrigger is the trigger of an event-delivered function.
type EventTrigger struct {
	EventType    string            `json:"eventType" yaml:"eventType"`
	EventFilters map[string]string `json:"eventFilters" yaml:"eventFilters"`
	Retry        bool              `json:"retry" yaml:"retry"`
}

func (EventTrigger) triggerKind() string { return "event" }

// EventFilterResource is the event filter key holding the watched resource.
const EventFilterResource = "resource"

// TriggerKind reports "https" or "event" for a trigger, or "" for nil.
func TriggerKind(trigger Trigger) string {
	if trigger == nil {
		return ""
	}
	return trigger.triggerKind()
}

// FunctionSpec is one deployable function in one region.
type FunctionSpec struct {
	TargetIds `yaml:",inline"`

	Platform   string  `json:"platform" yaml:"platform"`
	EntryPoint string  `json:"entryPoint" yaml:"entryPoint"`
	Runtime    string  `json:"runtime" yaml:"runtime"`
	Trigger    Trigger `json:"-" yaml:"-"`

	Concurrency                *int              `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ServiceAccountEmail        *string           `json:"serviceAccountEmail,omitempty" yaml:"serviceAccountEmail,omitempty"`
	Labels                     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	VPCConnector               *string           `json:"vpcConnector,omitempty" yaml:"vpcConnector,omitempty"`
	VPCConnectorEgressSettings *string           `json:"vpcConnectorEgressSettings,omitempty" yaml:"vpcConnectorEgressSettings,omitempty"`
	IngressSettings            *string           `json:"ingressSettings,omitempty" yaml:"ingressSettings,omitempty"`
	Timeout                    *string           `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxInstances               *int              `json:"maxInstances,omitempty" yaml:"maxInstances,omitempty"`
	MinInstances               *int              `json:"minInstances,omitempty" yaml:"minInstances,omitempty"`
	AvailableMemoryMB          *int              `json:"availableMemoryMb,omitempty" yaml:"availableMemoryMb,omitempty"`
	Invoker                    []string          `json:"invoker,omitempty" yaml:"invoker,omitempty"`
}

// ScheduleSpec is a scheduler job publishing to the function's topic.
type ScheduleSpec struct {
	ID            string                  `json:"id" yaml:"id"`
	Project       string                  `json:"project" yaml:"project"`
	Schedule      string                  `json:"schedule" yaml:"schedule"`
	TimeZone      *string                 `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	RetryConfig   *annotation.RetryConfig `json:"retryConfig,omitempty" yaml:"retryConfig,omitempty"`
	Transport     string                  `json:"transport" yaml:"transport"`
	TargetService TargetIds               `json:"targetService" yaml:"targetService"`
}

// PubSubSpec is the topic a scheduled function listens on.
type PubSubSpec struct {
	ID            string            `json:"id" yaml:"id"`
	Project       string            `json:"project" yaml:"project"`
	Labels        map[string]string `json:"labels" yaml:"labels"`
	TargetService TargetIds         `json:"targetService" yaml:"targetService"`
}

// Backend accumulates the desired state for one discovery run.
type Backend struct {
	Functions            []FunctionSpec    `json:"cloudFunctions" yaml:"cloudFunctions"`
	Schedules            []ScheduleSpec    `json:"schedules" yaml:"schedules"`
	Topics               []PubSubSpec      `json:"topics" yaml:"topics"`
	RequiredAPIs         map[string]string `json:"requiredAPIs" yaml:"requiredAPIs"`
	EnvironmentVariables map[string]string `json:"environmentVariables" yaml:"environmentVariables"`
}

// Empty returns a backend with no resources.
func Empty() *Backend {
	return &Backend{
		Functions:            []FunctionSpec{},
		Schedules:            []ScheduleSpec{},
		Topics:               []PubSubSpec{},
		RequiredAPIs:         map[string]string{},
		EnvironmentVariables: map[string]string{},
	}
}

// RequireAPI marks an API as needed by the backend.
func (b *Backend) RequireAPI(name string) {
	if b.RequiredAPIs == nil {
		b.RequiredAPIs = map[string]string{}
	}
	host, ok := requiredAPIHosts[name]
	if !ok {
		host = name + ".googleapis.com"
	}
	b.RequiredAPIs[name] = host
}

// ScheduleIDForFunction derives the id shared by a function's schedule and topic.
func ScheduleIDForFunction(fn TargetIds) string {
	return fmt.Sprintf("firebase-schedule-%s-%s", fn.ID, fn.Region)
}

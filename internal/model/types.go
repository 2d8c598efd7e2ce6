// Package model defines the record-form (serialisable) description of an
// evolved network: the data that survives between construct and teardown.
package model

// VersionedRecord captures schema and codec evolution for persistent data,
// the same way every stored entity in this module's storage layer does.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: SupportedSchemaVersion, CodecVersion: SupportedCodecVersion}
}

// NodeID is a process-unique, monotonically allocated identifier. It
// persists across the record<->live conversion.
type NodeID uint64

// ConnectionID is an opaque key into a NodeRecord's inbound connection map.
type ConnectionID string

// NodeKind tags the three node variants.
type NodeKind string

const (
	NodeKindNeuron   NodeKind = "neuron"
	NodeKindSensor   NodeKind = "sensor"
	NodeKindActuator NodeKind = "actuator"
)

// NodeType is the tagged variant from spec.md §3: Neuron, Sensor{outbound_count},
// Actuator. OutboundCount is only meaningful when Kind == NodeKindSensor.
type NodeType struct {
	Kind          NodeKind `json:"kind"`
	OutboundCount uint32   `json:"outbound_count,omitempty"`
}

// LearningKind selects a node's per-connection learning rule.
type LearningKind string

const (
	LearningNone    LearningKind = "none"
	LearningHebbian LearningKind = "hebbian"
)

type LearningAlgorithm struct {
	Kind LearningKind `json:"kind"`
	Rate float64      `json:"rate,omitempty"`
}

var NoLearning = LearningAlgorithm{Kind: LearningNone}

func Hebbian(rate float64) LearningAlgorithm {
	return LearningAlgorithm{Kind: LearningHebbian, Rate: rate}
}

// InactiveConnection is one inbound edge on a NodeRecord. ConnectionOrder is
// only meaningful when FromNode names a sensor: it is the positional index
// into that sensor's output vector feeding this edge.
type InactiveConnection struct {
	ConnectionOrder *uint32 `json:"connection_order,omitempty"`
	FromNode        NodeID  `json:"from_node"`
	Weight          float64 `json:"weight"`
}

// NodeRecord is the serialisable node: see spec.md §3 for the invariants
// the mutator and constructor must preserve over this shape.
type NodeRecord struct {
	NodeID               NodeID                              `json:"node_id"`
	Layer                int32                               `json:"layer"`
	Type                 NodeType                            `json:"type"`
	Inbound              map[ConnectionID]InactiveConnection `json:"inbound_connections"`
	Bias                 *float64                            `json:"bias,omitempty"`
	ActivationFunctionID *string                             `json:"activation_function_id,omitempty"`
	SyncFunctionID       *string                             `json:"sync_function_id,omitempty"`
	OutputHookID         *string                             `json:"output_hook_id,omitempty"`
	MaximumVectorLength  *uint32                             `json:"maximum_vector_length,omitempty"`
	Learning             LearningAlgorithm                   `json:"learning_algorithm"`
}

// NodeRecords is the full serialisation-ready description of a network.
type NodeRecords map[NodeID]NodeRecord

// NetworkID names one candidate network within a generation.
type NetworkID string

// ScoredNetwork pairs a network's id with its cumulative score and final
// record form, as returned by KillCortex at the end of an evaluation.
type ScoredNetwork struct {
	NetworkID NetworkID   `json:"network_id"`
	Score     float64     `json:"score"`
	Records   NodeRecords `json:"records"`
}

// ScoredNodeRecords is the scheduler's returned value (spec.md §6).
type ScoredNodeRecords []ScoredNetwork

// FitnessDirective is the caller's verdict after scoring one think cycle.
// In the generation scheduler an end directive from any network stops every
// network's remaining cycles for that generation; in the live evolver it
// ends only the scored network's remaining cycles. See DESIGN.md for why spec.md's "EndGeneration" and "EndThinkCycle"
// wording are treated as one directive.
type FitnessDirective string

const (
	DirectiveContinue FitnessDirective = "continue_generation"
	DirectiveEnd      FitnessDirective = "end_generation"
)

// CompletionStatus is the cortex's verdict on one ThinkAndAct wave.
type CompletionStatus string

const (
	ThinkCycleFinished   CompletionStatus = "finished"
	ThinkCycleIncomplete CompletionStatus = "incomplete"
)

func Float64Ptr(v float64) *float64 { return &v }
func Uint32Ptr(v uint32) *uint32    { return &v }
func StringPtr(v string) *string    { return &v }

package schema

// Fully-qualified names of the fixed built-in event types, pre-registered
// by every Registry so the ingest coordinator can recognize them by
// TypeID rather than string comparison on the hot path.
const (
	NameScopeEnter      = "wtf.scope#enter"
	NameScopeLeave      = "wtf.scope#leave"
	NameZoneCreate      = "wtf.zone#create"
	NameFlowBranch      = "wtf.flow#branch"
	NameFlowExtend      = "wtf.flow#extend"
	NameFlowTerminate   = "wtf.flow#terminate"
	NameFlowDataInstant = "wtf.flow#data.instant"

	// FlowDataArgID is the argument name every flow-data appender type
	// (builtin or user-defined) carries; flow.Tracker.GetData merges every
	// other argument into the flow's data map for user-defined appenders,
	// and only {name,value} for the builtin appender above.
	FlowDataArgID = "id"
)

var builtinTypes = []Type{
	{
		Name:  NameScopeEnter,
		Flags: FlagScopeEnter | FlagBuiltin,
		Args:  []ArgSpec{{Name: "name", Kind: KindString}},
	},
	{
		Name:  NameScopeLeave,
		Flags: FlagScopeLeave | FlagBuiltin,
		Args:  nil,
	},
	{
		Name:  NameZoneCreate,
		Flags: FlagInternal | FlagBuiltin,
		Args: []ArgSpec{
			{Name: "name", Kind: KindString},
			{Name: "type", Kind: KindString},
			{Name: "location", Kind: KindString},
		},
	},
	{
		Name:  NameFlowBranch,
		Flags: FlagBuiltin,
		Args: []ArgSpec{
			{Name: "id", Kind: KindInt},
			{Name: "parent", Kind: KindInt},
			{Name: "name", Kind: KindString},
		},
	},
	{
		Name:  NameFlowExtend,
		Flags: FlagBuiltin,
		Args: []ArgSpec{
			{Name: "id", Kind: KindInt},
			{Name: "name", Kind: KindString},
		},
	},
	{
		Name:  NameFlowTerminate,
		Flags: FlagBuiltin,
		Args: []ArgSpec{
			{Name: "id", Kind: KindInt},
		},
	},
	{
		// Builtin data-append: carries a single {name,value} pair, per
		// Tracker.GetData's merge rule for INTERNAL appenders.
		Name:  NameFlowDataInstant,
		Flags: FlagInternal | FlagBuiltin,
		Args: []ArgSpec{
			{Name: "id", Kind: KindInt},
			{Name: "name", Kind: KindString},
			{Name: "value", Kind: KindString},
		},
	},
}

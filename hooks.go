package swrcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths and from background tasks.
type Hooks interface {
	// An entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider Get failed; the call computed directly instead.
	StoreReadFailed(storageKey string, err error)

	// Provider Set/Add failed; the value was still returned to the caller.
	StoreWriteFailed(storageKey string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A foreground call found a placeholder and computed synchronously.
	PlaceholderFallback(storageKey string)

	// A soft-stale entry was extended and a refresh dispatched.
	Revalidated(storageKey string)

	// A dispatched computation failed. Nobody else observes this error.
	BackgroundComputeFailed(storageKey string, err error)

	// A background write was dropped because a newer generation exists.
	GenerationSkipped(storageKey string)

	// GenStore errors (snapshot or bump).
	GenError(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) StoreReadFailed(string, error)         {}
func (NopHooks) StoreWriteFailed(string, error)        {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) PlaceholderFallback(string)            {}
func (NopHooks) Revalidated(string)                    {}
func (NopHooks) BackgroundComputeFailed(string, error) {}
func (NopHooks) GenerationSkipped(string)              {}
func (NopHooks) GenError(string, error)                {}

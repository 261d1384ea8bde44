package features

// Column names of the feature vector, shared by the store, the cluster
// summaries and the CLI.
const (
	ColHasThreads       = "has_threads"
	ColHasLocks         = "has_locks"
	ColHasChannels      = "has_channels"
	ColHasActors        = "has_actors"
	ColHasAsync         = "has_async"
	ColLockDensity      = "lock_density"
	ColChannelDensity   = "channel_density"
	ColActorDensity     = "actor_density"
	ColAsyncDensity     = "async_density"
	ColConcurrencyScore = "concurrency_score"
	ColLanguage         = "language"
)

// ClusteringFeatures lists the six numeric features used for clustering, in
// the order Vector.Values returns them. The language tag is never included.
var ClusteringFeatures = []string{
	ColHasThreads,
	ColLockDensity,
	ColChannelDensity,
	ColActorDensity,
	ColAsyncDensity,
	ColConcurrencyScore,
}

// NumClusteringFeatures is len(ClusteringFeatures).
const NumClusteringFeatures = 6

// Vector is one analyzed sample's feature row.
type Vector struct {
	HasThreads  int `json:"has_threads"`
	HasLocks    int `json:"has_locks"`
	HasChannels int `json:"has_channels"`
	HasActors   int `json:"has_actors"`
	HasAsync    int `json:"has_async"`

	LockDensity    float64 `json:"lock_density"`
	ChannelDensity float64 `json:"channel_density"`
	ActorDensity   float64 `json:"actor_density"`
	AsyncDensity   float64 `json:"async_density"`

	ConcurrencyScore float64 `json:"concurrency_score"`

	// Language is the declared (ground truth) tag. Excluded from Values.
	Language string `json:"language"`
}

// Values returns the clustering features in ClusteringFeatures order.
func (v Vector) Values() []float64 {
	return []float64{
		float64(v.HasThreads),
		v.LockDensity,
		v.ChannelDensity,
		v.ActorDensity,
		v.AsyncDensity,
		v.ConcurrencyScore,
	}
}

// PatternCount is the raw occurrence count and density of one pattern.
type PatternCount struct {
	Pattern string  `json:"pattern"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

package v1

// KeySimilarity pairs a key with its neighborhood similarity across the two
// compared spaces.
type KeySimilarity struct {
	Key        string
	Similarity float64
}

// Comparison summarises how two embeddings relate over their shared
// vocabulary. Keys is zero when the vocabularies are disjoint; the other
// fields are empty in that case.
type Comparison struct {
	FirstID  string
	SecondID string
	Keys     int

	MedianSimilarity        float64
	MedianOrderedSimilarity float64

	LeastSimilar []KeySimilarity
	MostSimilar  []KeySimilarity
}

// Report describes the internal geometry of a single embedding.
type Report struct {
	ID        string
	Keys      int
	Neighbors int

	MedianMeanDistance  float64
	MedianFirstDistance float64
}

// Neighbor is one entry of a key's neighbor list.
type Neighbor struct {
	Key        string
	Similarity float64
}

// NeighborPair is a neighbor both spaces agree on, with its similarity to
// the queried key in each space.
type NeighborPair struct {
	Key              string
	FirstSimilarity  float64
	SecondSimilarity float64
}

// KeyNeighborhoods contrasts one key's neighbor lists across both spaces.
type KeyNeighborhoods struct {
	Key        string
	Similarity float64

	Common     []NeighborPair
	FirstOnly  []Neighbor
	SecondOnly []Neighbor
}

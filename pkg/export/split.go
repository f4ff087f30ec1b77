package export

import (
	"math/rand"
	"time"
)

// SplitCounts returns how many of n files go to train, valid and test.
// Train and valid are floored; test takes the remainder.
func SplitCounts(n, trainPct, validPct int) (train, valid, test int) {
	train = n * trainPct / 100
	valid = n * validPct / 100
	test = n - train - valid
	return train, valid, test
}

// assignment pairs a source file with its split
type assignment struct {
	file  string
	split string
}

// splitSequential slices files in their given order
func splitSequential(files []string, trainPct, validPct int) []assignment {
	train, valid, _ := SplitCounts(len(files), trainPct, validPct)
	out := make([]assignment, len(files))
	for i, f := range files {
		split := SplitTest
		switch {
		case i < train:
			split = SplitTrain
		case i < train+valid:
			split = SplitValid
		}
		out[i] = assignment{file: f, split: split}
	}
	return out
}

// splitShuffled shuffles a copy of files before slicing. A zero seed uses
// the clock.
func splitShuffled(files []string, trainPct, validPct int, seed int64) []assignment {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	shuffled := make([]string, len(files))
	copy(shuffled, files)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return splitSequential(shuffled, trainPct, validPct)
}

func countSplits(as []assignment) map[string]int {
	counts := map[string]int{SplitTrain: 0, SplitValid: 0, SplitTest: 0}
	for _, a := range as {
		counts[a.split]++
	}
	return counts
}

package platform

import (
	"fmt"
	"math/rand/v2"
)

var (
	nameAdjectives = []string{
		"amber", "bold", "brisk", "calm", "clever", "cosmic", "crisp", "daring",
		"eager", "gentle", "golden", "happy", "lively", "lucky", "mellow", "misty",
		"noble", "polished", "quiet", "rapid", "silent", "sunny", "swift", "vivid",
	}
	nameNouns = []string{
		"badger", "breeze", "canyon", "comet", "falcon", "forest", "harbor", "island",
		"lantern", "meadow", "nebula", "orchid", "otter", "pebble", "river", "summit",
		"thunder", "tiger", "valley", "willow",
	}
)

// RandomName returns a name of the form adjective-noun-NNNN, suitable for
// directories and subdomains.
func RandomName() string {
	return fmt.Sprintf("%s-%s-%04d",
		nameAdjectives[rand.IntN(len(nameAdjectives))],
		nameNouns[rand.IntN(len(nameNouns))],
		rand.IntN(10000),
	)
}

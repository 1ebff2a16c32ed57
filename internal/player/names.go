package player

import "math/rand"

var nameAdjectives = []string{
	"agile", "bold", "brisk", "calm", "clever", "curious", "daring",
	"eager", "fearless", "gentle", "keen", "lively", "mellow", "nimble",
	"quick", "quiet", "rapid", "sharp", "swift", "witty",
}

var nameAnimals = []string{
	"badger", "bison", "crane", "falcon", "gecko", "heron", "ibex",
	"jaguar", "lemur", "lynx", "marmot", "otter", "panther", "quokka",
	"raven", "stoat", "tapir", "viper", "walrus", "wombat",
}

// RandomName returns an adjective-animal display name for users that join
// without one or whose chosen name fails the appropriateness check.
func RandomName() string {
	return nameAdjectives[rand.Intn(len(nameAdjectives))] + "-" +
		nameAnimals[rand.Intn(len(nameAnimals))]
}

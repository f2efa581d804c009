package model

// Assignment places one goal in the four-level hierarchy.
type Assignment struct {
	GoalIndex     int
	Galaxy        int
	Cluster       int
	SolarSystem   int
	Star          int // local to the solar system
	ClusterSize   int // rows sharing the solar system
	Level0        string
	Level1        string
	Level2        string
	Level3        string
	HierarchyPath string
}

// HierarchyLevel is the depth of every emitted leaf.
const HierarchyLevel = 3

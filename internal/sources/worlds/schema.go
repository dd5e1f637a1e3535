package worlds

// File is the root structure of the worlds catalog:
//
//	worlds:
//	  - minecraft:overworld
//	  - minecraft:the_nether
type File struct {
	Worlds []string `yaml:"worlds"`
}

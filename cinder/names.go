package cinder

import "strconv"

const uniquePrefix = "Un1Qu3"

// nameGenerator hands out symbol names that never repeat within a session.
// The counter is shared by both forms and is not reset after failed
// compiles.
type nameGenerator struct {
	counter uint64
}

// next returns a wrapper name such as `__cinder_Un1Qu30`.
func (g *nameGenerator) next() string {
	return "__cinder_" + g.nextPlain()
}

func (g *nameGenerator) nextPlain() string {
	name := uniquePrefix + strconv.FormatUint(g.counter, 10)
	g.counter++
	return name
}

// Package patterns provides the built-in pattern implementations for
// the textmode engine: the Conway-Life cellular automaton, the matrix
// glyph rain, and the binary waterfall.
//
// Register them against an engine to use them:
//
//	eng.RegisterPattern("conway", patterns.NewConwayLife)
//	eng.RegisterPattern("matrix", patterns.NewMatrixRain)
//	eng.RegisterPattern("binary", patterns.NewBinaryWaterfall)
package patterns

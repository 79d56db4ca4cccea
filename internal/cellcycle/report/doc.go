// Package report summarises a phase table: per-phase duration statistics,
// PNG histograms drawn with gonum/plot and an HTML chart page rendered with
// go-echarts.
//
// Dependency rule: report only reads phasetable records and writes through
// fsutil or an io.Writer.
package report

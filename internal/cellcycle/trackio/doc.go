// Package trackio reads track tables and writes resolved, phase and
// annotation tables as CSV.
package trackio

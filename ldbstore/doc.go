// Package ldbstore implements a Q-value table that keeps the values of
// every state on disk in a LevelDB database, rather than in memory.
//
// It is substantially slower than qlearn.Table, but the table survives the
// process and can be inspected or shared with other tools while training.
package ldbstore

// Package dag converts the graph drawn in the editor into the normalized
// workflow document that is persisted for Airflow.
//
// Graphs are read loosely: missing keys take defaults and JSON values keep
// their original types. Parameter values are cast according to the type
// string that accompanies them, and a value that cannot be cast is kept as
// submitted
package dag

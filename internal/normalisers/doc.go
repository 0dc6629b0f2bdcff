// Package normalisers provides implementations of the Normaliser
// interface, one per revenue source. Each normaliser knows the raw
// record shape of its provider and maps it to the source's canonical
// collection row.
//
// Normalisers are paired with their connectors in the pipeline
// registry at startup.
package normalisers

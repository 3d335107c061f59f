// Package fuzzy implements a Mamdani-style inference engine that maps
// tracking error and error rate to PID gain adjustments.
//
// Inference proceeds in the classic order: fuzzification of both crisp
// inputs against 5-label linguistic variables, rule firing by min-AND over
// the antecedent memberships, per-consequent-label aggregation by max, and
// centroid defuzzification over the output label representatives.
//
// Rule bases are fixed at engine construction and validated there; labels
// are indexed enumerations, so inference never does string lookups.
package fuzzy

// Package variable builds named, typed variables on top of reactive.Value.
//
// Every variable carries a Kind descriptor that knows its persistence tag,
// its cty type and how to encode and decode its value as text. Descriptors
// are package-level values, so persistence never inspects a variable's Go
// type at runtime: the registry looks up the tag, and the variable encodes
// itself.
//
// Int and Float add arithmetic helpers and implement NumericPayload, which
// lets consumers drive any numeric variable through float64.
package variable

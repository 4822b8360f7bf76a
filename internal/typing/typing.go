package typing

// Unit is the empty value carried by pipelines that only signal completion.
type Unit = struct{}

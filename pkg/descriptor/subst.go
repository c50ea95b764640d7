package descriptor

// Subst maps type-variable names to the descriptors bound to them.
//
// Application is a single-pass tree rewrite: a TypeVariable leaf is
// replaced by its binding as-is (bindings are concrete and are not
// re-substituted), compound descriptors rebuild themselves around
// rewritten children, and literal constants pass through untouched.
// Every application allocates fresh nodes, so bindings from one
// validation can never leak into another.
type Subst map[string]Descriptor

// BindArguments binds a class's declared type parameters positionally
// to the given arguments. It reports false when the argument count does
// not equal the declared arity; the caller treats that as a malformed
// shape, not an error.
func BindArguments(class *Class, args []Descriptor) (Subst, bool) {
	if class == nil || len(args) != len(class.Params) {
		return nil, false
	}
	s := make(Subst, len(args))
	for i, name := range class.Params {
		s[name] = args[i]
	}
	return s, true
}

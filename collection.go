package apptest

// Collection Utility Function: in
// Check if current object exist in a collection, similar to how Python "in" works.
//
// Accept any comparable object
// ex:
// collection: ["a", "b", "c"]
// "d" in collection => false
// "a" in collection => true
func in[T comparable](current T, collections []T) bool {
	return some[T](collections, func(param T) bool {
		return param == current
	})
}

// Collection Utility Function: some
// Check if any of the object in current collection
// satisfy the objective (defined by a custom function that return true/false)
//
// Accept any object
// ex:
// collection: [1, 2, 3]
// custom function: equal 3 (func (num int) bool { return num == 3 })
// output: true
func some[T any](collections []T, fn func(T) bool) bool {
	for _, data := range collections {
		if fn(data) {
			return true
		}
	}
	return false
}

// Collection Utility Function: findFirst
// Find the first object in current collection that satisfy the objective.
// The second return value reports whether a match was found.
//
// ex:
// collection: ["Content-Type", "Accept"]
// custom function: strings.EqualFold(key, "content-type")
// output: "Content-Type", true
func findFirst[T any](collections []T, fn func(T) bool) (T, bool) {
	for _, data := range collections {
		if fn(data) {
			return data, true
		}
	}
	var empty T
	return empty, false
}

// Collection Utility Function: merge
// Merge / flatten more than 1 collections with same type into 1 collection
//
// ex:
// collections: [1, 2, 3], [4, 5, 6]
// output: [1, 2, 3, 4, 5, 6]
func merge[T any](collections ...[]T) []T {
	var merged []T
	for _, collection := range collections {
		merged = append(merged, collection...)
	}
	return merged
}

// Collection Utility Function: keys
// Return the keys of a map, in no particular order.
func keys[K comparable, V any](m map[K]V) []K {
	result := make([]K, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}

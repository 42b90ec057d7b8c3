// Package facestore implements the descriptor store: an append-only table of
// face descriptors with nearest-match lookup.
//
// The store exposes three operations. Add appends a descriptor and returns
// its index. Compare returns the index of the closest stored descriptor when
// it lies within the match threshold. List returns every descriptor in
// insertion order.
//
// A caller that wants "recognize or enroll" semantics may call Compare and
// then Add; under concurrent use another caller can enroll the same face
// between the two calls. FindOrAdd performs both steps under one lock.
package facestore

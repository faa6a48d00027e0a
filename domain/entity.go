package domain

import "go.mongodb.org/mongo-driver/v2/bson"

// Tombstone is the value left behind by a delete when tombstones are enabled.
// It is distinguishable from a key that was never set, but every read treats
// it as undefined. It is the BSON undefined value, so it survives a round
// trip through the driver.
var Tombstone = bson.Undefined{}

// IsTombstone reports whether v is the [Tombstone].
func IsTombstone(v any) bool {
	_, ok := v.(bson.Undefined)
	return ok
}

// TypeClass is the coarse structural category of a value.
type TypeClass uint8

// Type classes, listed in [TypeOrder].
const (
	TypeUnknown TypeClass = iota
	TypeRegex
	TypeDate
	TypeBoolean
	TypeBuffer
	TypeArray
	TypeObject
	TypeString
	TypeNumber
	TypeNull
)

// TypeOrder is the fixed order of type classes used to rank values of
// different classes. The position of a class in this list is its weight.
var TypeOrder = [...]TypeClass{
	TypeUnknown,
	TypeRegex,
	TypeDate,
	TypeBoolean,
	TypeBuffer,
	TypeArray,
	TypeObject,
	TypeString,
	TypeNumber,
	TypeNull,
}

var typeNames = [...]string{
	TypeUnknown: "unknown",
	TypeRegex:   "regex",
	TypeDate:    "date",
	TypeBoolean: "boolean",
	TypeBuffer:  "buffer",
	TypeArray:   "array",
	TypeObject:  "object",
	TypeString:  "string",
	TypeNumber:  "number",
	TypeNull:    "null",
}

// Weight returns the position of t in [TypeOrder].
func (t TypeClass) Weight() int {
	for n, c := range TypeOrder {
		if c == t {
			return n
		}
	}
	return 0
}

// String implements [fmt.Stringer].
func (t TypeClass) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeUnknown]
}

// ParseTypeClass returns the [TypeClass] named by s. Besides the class names
// themselves, the BSON type aliases used by MongoDB's $type are accepted.
func ParseTypeClass(s string) (TypeClass, bool) {
	for n, name := range typeNames {
		if name == s {
			return TypeClass(n), true
		}
	}
	switch s {
	case "double", "int", "long", "decimal":
		return TypeNumber, true
	case "bool":
		return TypeBoolean, true
	case "timestamp":
		return TypeDate, true
	case "binData", "objectId":
		return TypeBuffer, true
	case "undefined":
		return TypeUnknown, true
	}
	return TypeUnknown, false
}

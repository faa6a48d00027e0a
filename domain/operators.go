package domain

// Update operators.
// https://www.mongodb.com/docs/manual/reference/operator/update/
const (
	// OpCurrentDate sets the value of a field to the current date.
	OpCurrentDate = "$currentDate"
	// OpInc increments the value of a field by the specified amount.
	OpInc = "$inc"
	// OpMin only updates the field if the specified value is less than the
	// existing field value.
	OpMin = "$min"
	// OpMax only updates the field if the specified value is greater than
	// the existing field value.
	OpMax = "$max"
	// OpMul multiplies the value of a field by the specified amount.
	OpMul = "$mul"
	// OpRename renames a field.
	OpRename = "$rename"
	// OpSet sets the value of a field.
	OpSet = "$set"
	// OpSetOnInsert sets the value of a field only when inserting.
	OpSetOnInsert = "$setOnInsert"
	// OpUnset removes the specified field.
	OpUnset = "$unset"
	// OpAddToSet adds elements to an array only if they do not already
	// exist in it.
	OpAddToSet = "$addToSet"
	// OpPop removes the first or last item of an array.
	OpPop = "$pop"
	// OpPull removes all array elements equal to a value.
	OpPull = "$pull"
	// OpPush adds an item to an array.
	OpPush = "$push"
	// OpPullAll removes all matching values from an array.
	OpPullAll = "$pullAll"
)

// Update operator modifiers.
const (
	ModEach     = "$each"
	ModSlice    = "$slice"
	ModSort     = "$sort"
	ModPosition = "$position"
	ModType     = "$type"
)

// DeltaOperators lists every update operator understood by the delta engine.
var DeltaOperators = []string{
	OpCurrentDate,
	OpInc,
	OpMin,
	OpMax,
	OpMul,
	OpRename,
	OpSet,
	OpSetOnInsert,
	OpUnset,
	OpAddToSet,
	OpPop,
	OpPull,
	OpPush,
	OpPullAll,
}

// Logical query operators.
// https://www.mongodb.com/docs/manual/reference/operator/query-logical/
const (
	QAnd = "$and"
	QOr  = "$or"
	QNor = "$nor"
)

// Field query operators.
// https://www.mongodb.com/docs/manual/reference/operator/query/
const (
	QEq         = "$eq"
	QGt         = "$gt"
	QGte        = "$gte"
	QLt         = "$lt"
	QLte        = "$lte"
	QNe         = "$ne"
	QIn         = "$in"
	QNin        = "$nin"
	QExists     = "$exists"
	QType       = "$type"
	QMod        = "$mod"
	QRegex      = "$regex"
	QOptions    = "$options"
	QExpr       = "$expr"
	QJSONSchema = "$jsonSchema"
	QText       = "$text"
	QWhere      = "$where"
)

// IsOperator reports whether key names an operator, that is, whether it
// starts with a dollar sign.
func IsOperator(key string) bool {
	return len(key) != 0 && key[0] == '$'
}

// IsDeltaOperator reports whether key is one of [DeltaOperators].
func IsDeltaOperator(key string) bool {
	for _, op := range DeltaOperators {
		if op == key {
			return true
		}
	}
	return false
}

package errors

// Error Message Catalog
//
// Standardized message formats, grouped by the operation that raises
// them, so callers format consistent text instead of composing ad hoc
// strings at each call site.
//
// All messages:
//   - start lowercase (except proper nouns / operator symbols)
//   - are written in the present tense
//   - name the offending value/type where that is cheap to include

// Type errors.
const (
	ErrMsgTypeMismatch        = "cannot perform %s on %s and %s"
	ErrMsgNotCallable         = "%s is not a function"
	ErrMsgNotConstructable    = "%s is not a constructor"
	ErrMsgNotIterable         = "%s is not iterable"
	ErrMsgNotAnObject         = "%s is not an object"
	ErrMsgCannotConvertToPrim = "cannot convert %s to a primitive value"
	ErrMsgCannotAssignConst   = "assignment to constant variable"
	ErrMsgCannotRedeclare     = "identifier '%s' has already been declared"
	ErrMsgCannotDefineProp    = "cannot define property '%s': object is not extensible"
	ErrMsgCannotDeleteProp    = "cannot delete property '%s': not configurable"
	ErrMsgCannotSetFrozenProp = "cannot assign to read only property '%s' of %s"
	ErrMsgNonConfigurableGet  = "'get' on proxy: property '%s' is a non-configurable and non-writable data property on the proxy target but the proxy did not return its actual value"
	ErrMsgSuperOutsideMethod  = "'super' keyword is only valid inside a method"
	ErrMsgSuperCallTwice      = "super constructor may only be called once"
	ErrMsgThisBeforeSuper     = "must call super constructor before accessing 'this'"
)

// Range errors.
const (
	ErrMsgInvalidArrayLength = "invalid array length"
	ErrMsgStackOverflow      = "maximum call stack size exceeded"
	ErrMsgInvalidRadix       = "toString() radix must be between 2 and 36"
)

// Reference errors.
const (
	ErrMsgUndefinedVariable = "%s is not defined"
	ErrMsgTDZAccess         = "cannot access '%s' before initialization"
	ErrMsgInvalidLHS        = "invalid left-hand side in assignment"
)

// Promise/async/generator errors.
const (
	ErrMsgResolveSelf       = "chaining cycle detected for promise"
	ErrMsgGeneratorRunning  = "generator is already running"
	ErrMsgGeneratorFinished = "generator has already finished"
	ErrMsgAwaitNotThenable  = "await argument is not a thenable and will be wrapped as a resolved value"
)

// GC/heap invariant errors (internal).
const (
	ErrMsgFreedObjectDeref = "use of freed object id %d"
	ErrMsgBorrowConflict   = "interior borrow conflict on object id %d: reentrant mutation while a callback was active"
	ErrMsgDuplicatePropKey = "duplicate property key %q on object id %d"
)

package service

// Identity is the request-scoped authenticated student context, decoded from
// the JWT by the middleware and passed explicitly into every operation.
type Identity struct {
	StudentID    uint
	ClassGroupID uint
}

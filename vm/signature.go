package vm

// Signature is the calling convention shared by a group of slots.
//
// Every slot is invoked as Invoke(rt, self, args); the signature fixes how
// many args follow self and what the result means.
type Signature uint8

const (
	SigUnary       Signature = iota // (self) -> value: __neg__, __repr__
	SigPredicate                    // (self) -> bool: __bool__
	SigLen                          // (self) -> int: __len__, __hash__
	SigBinary                       // (self, other) -> value: __add__, __lt__
	SigTernary                      // (self, other, mod) -> value: __pow__
	SigGetAttr                      // (self, name) -> value
	SigSetAttr                      // (self, name, value)
	SigDelAttr                      // (self, name)
	SigDescrGet                     // (self, instance, owner) -> value
	SigDescrSet                     // (self, instance, value)
	SigDescrDelete                  // (self, instance)
	SigCall                         // (self, args...) -> value

	numSignatures
)

var signatureNames = [numSignatures]string{
	SigUnary:       "unary",
	SigPredicate:   "predicate",
	SigLen:         "len",
	SigBinary:      "binary",
	SigTernary:     "ternary",
	SigGetAttr:     "getattr",
	SigSetAttr:     "setattr",
	SigDelAttr:     "delattr",
	SigDescrGet:    "descrget",
	SigDescrSet:    "descrset",
	SigDescrDelete: "descrdelete",
	SigCall:        "call",
}

var signatureArity = [numSignatures]int{
	SigUnary:       0,
	SigPredicate:   0,
	SigLen:         0,
	SigBinary:      1,
	SigTernary:     2,
	SigGetAttr:     1,
	SigSetAttr:     2,
	SigDelAttr:     1,
	SigDescrGet:    2,
	SigDescrSet:    2,
	SigDescrDelete: 1,
	SigCall:        -1,
}

func (s Signature) String() string { return signatureNames[s] }

// Arity returns the number of arguments after self, or -1 if variadic.
func (s Signature) Arity() int { return signatureArity[s] }

// Empty returns the sentinel slot for this signature.
func (s Signature) Empty() Slot { return emptySlots[s] }

// emptySlots holds one sentinel per signature. They are never nil and
// compare equal to themselves only.
var emptySlots = func() [numSignatures]Slot {
	var out [numSignatures]Slot
	for s := Signature(0); s < numSignatures; s++ {
		out[s] = &emptySlot{sig: s}
	}
	return out
}()

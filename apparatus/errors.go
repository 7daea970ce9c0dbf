package apparatus

import "errors"

// ErrMissingID indicates a VariationUnit input lacked an id.
var ErrMissingID = errors.New("apparatus: variation unit missing id")

// ErrUnknownReading indicates support or a stemma edge referenced a RID
// absent from the unit's reading list (and not flagged dropped).
var ErrUnknownReading = errors.New("apparatus: support references unknown reading")

// ErrDuplicateUnitID indicates two units in the same apparatus share an id.
var ErrDuplicateUnitID = errors.New("apparatus: duplicate variation unit id")

// ErrUnknownSelector indicates a passage selector did not resolve to any
// unit by id, label, or decimal VUI.
var ErrUnknownSelector = errors.New("apparatus: unknown passage selector")

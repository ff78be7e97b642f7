package lot

import "parkly/internal/pkg/errs"

var ErrLotNotFound = errs.Define(errs.ErrNotFound, "LOT_NOT_FOUND", "parking lot not found")

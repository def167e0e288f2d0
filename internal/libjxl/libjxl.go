// Package libjxl binds the reference JPEG XL library to the engine
// contract. The binding is built only with the libjxl build tag and cgo;
// other builds get a stub whose factories report engine.ErrUnavailable.
package libjxl

import (
	"fmt"

	"github.com/oy3o/imageio/engine"
)

func unavailable(what string) error {
	return fmt.Errorf("%w: libjxl %s not built in (build with -tags libjxl)", engine.ErrUnavailable, what)
}

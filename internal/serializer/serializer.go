// Package serializer maps payload types to their wire encoders.
package serializer

import (
	"fmt"
	"io"
	"reflect"
)

var serializers = make(Serializers)

type Serializers map[reflect.Type]Serializer

// Serializer is the interface that wraps the basic serialization methods
type Serializer interface {

	// Decode decodes the input into the output
	Decode(input []byte, output any) error

	// Encode encodes the input into the output
	Encode(input any, output io.ByteWriter) error
}

// Register registers a model and its serializer
func Register(model any, serializer Serializer) {
	serializers[reflect.TypeOf(model)] = serializer
}

func Encode(model any, output io.ByteWriter) error {
	if serializer, ok := serializers[reflect.TypeOf(model)]; ok {
		return serializer.Encode(model, output)
	}

	return fmt.Errorf("no serializer found for model %T", model)
}

func Decode(model any, input []byte) error {
	if serializer, ok := serializers[reflect.TypeOf(model)]; ok {
		return serializer.Decode(input, model)
	}

	return fmt.Errorf("no serializer found for model %T", model)
}

// write copies b to output, in one call when output is also an io.Writer.
func write(output io.ByteWriter, b []byte) error {
	if w, ok := output.(io.Writer); ok {
		_, err := w.Write(b)
		return err
	}
	for _, c := range b {
		if err := output.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

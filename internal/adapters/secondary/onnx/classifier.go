// Package onnx runs classifiers exported to ONNX (for example with skl2onnx)
// through the onnxruntime shared library.
package onnx

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
)

const Kind = "onnx"

// labelOutputNames are tried in order when picking the label output of a graph.
var labelOutputNames = []string{"output_label", "label"}

// Loader initializes the onnxruntime environment on first use and keeps it
// alive until Close.
type Loader struct {
	libraryPath string

	mu          sync.Mutex
	initialized bool
}

var _ ports.ClassifierLoader = (*Loader)(nil)

func NewLoader(libraryPath string) *Loader {
	return &Loader{libraryPath: libraryPath}
}

func (l *Loader) Extensions() []string {
	return []string{".onnx"}
}

func (l *Loader) Load(path string) (ports.Classifier, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	if err := l.ensureEnvironment(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read graph io: %v", domain.ErrInvalidArtifact, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: graph has no inputs or outputs", domain.ErrInvalidArtifact)
	}

	inputName := inputs[0].Name
	nFeatures := featureDim(inputs[0].Dimensions)
	if nFeatures <= 0 {
		return nil, fmt.Errorf("%w: input %q has no fixed feature dimension", domain.ErrInvalidArtifact, inputName)
	}
	outputName := pickLabelOutput(outputs)

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(nFeatures)))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: create onnx session: %v", domain.ErrInvalidArtifact, err)
	}

	return &classifier{
		session:      session,
		nFeatures:    nFeatures,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Close releases the onnxruntime environment. Classifiers must be closed first.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return nil
	}
	l.initialized = false
	return ort.DestroyEnvironment()
}

func (l *Loader) ensureEnvironment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}
	if l.libraryPath != "" {
		ort.SetSharedLibraryPath(l.libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	l.initialized = true
	return nil
}

// featureDim returns the column count of a [batch, features] input, where the
// batch axis is usually dynamic (-1).
func featureDim(shape ort.Shape) int {
	if len(shape) != 2 {
		return 0
	}
	return int(shape[1])
}

func pickLabelOutput(outputs []ort.InputOutputInfo) string {
	for _, want := range labelOutputNames {
		for _, o := range outputs {
			if o.Name == want {
				return o.Name
			}
		}
	}
	return outputs[0].Name
}

// classifier shares one bound input/output tensor pair, so Run is serialized.
type classifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	nFeatures    int
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[int64]
}

func (c *classifier) Predict(features []float64) (int, error) {
	if len(features) != c.nFeatures {
		return 0, fmt.Errorf("%w: expected %d features, got %d", domain.ErrFeatureCountMismatch, c.nFeatures, len(features))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	in := c.inputTensor.GetData()
	for i, v := range features {
		in[i] = float32(v)
	}

	if err := c.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}

	return int(c.outputTensor.GetData()[0]), nil
}

func (c *classifier) NumFeatures() int { return c.nFeatures }

func (c *classifier) Kind() string { return Kind }

func (c *classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.session != nil {
		errs = append(errs, c.session.Destroy())
		c.session = nil
	}
	if c.inputTensor != nil {
		errs = append(errs, c.inputTensor.Destroy())
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		errs = append(errs, c.outputTensor.Destroy())
		c.outputTensor = nil
	}
	return errors.Join(errs...)
}

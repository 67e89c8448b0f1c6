// Package bestframe selects the sharpest frame from a burst of frames
// belonging to one recorded chunk. The field relay uses it to forward a
// single representative frame per chunk instead of the whole burst.
package bestframe

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Scorer rates frame sharpness; higher is better.
type Scorer interface {
	Score(jpegData []byte) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(jpegData []byte) (float64, error)

// Score calls f.
func (f ScorerFunc) Score(jpegData []byte) (float64, error) {
	return f(jpegData)
}

// LaplacianScorer scores sharpness as the variance of the Laplacian.
// Motion-blurred frames carry little high-frequency content and score
// near zero.
type LaplacianScorer struct {
	mu sync.Mutex // Protects OpenCV buffers
}

// NewLaplacian creates a Laplacian-variance scorer.
func NewLaplacian() *LaplacianScorer {
	return &LaplacianScorer{}
}

// Score decodes the JPEG and computes the Laplacian variance.
func (s *LaplacianScorer) Score(jpegData []byte) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := gocv.IMDecode(jpegData, gocv.IMReadGrayScale)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return 0, fmt.Errorf("empty image")
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(img, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd, nil
}

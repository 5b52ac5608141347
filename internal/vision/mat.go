package vision

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat wraps gocv.Mat with close-once semantics, a reference count and a
// finalizer so a leaked wrapper cannot leak native memory. Every wrapper
// reports its allocation to the package tracker.
type Mat struct {
	mat      gocv.Mat
	isValid  int32
	refCount int32
	bytes    int64
}

func newMatFromFile(path string, flag gocv.IMReadFlag) (*Mat, error) {
	mat := gocv.IMRead(path, flag)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("could not read image %q", path)
	}
	return wrapMat(mat), nil
}

func newEmptyMat() *Mat {
	return wrapMat(gocv.NewMat())
}

func wrapMat(mat gocv.Mat) *Mat {
	m := &Mat{
		mat:      mat,
		isValid:  1,
		refCount: 1,
		bytes:    int64(mat.Total() * mat.ElemSize()),
	}
	tracker.trackAlloc(m.bytes)
	runtime.SetFinalizer(m, (*Mat).finalize)
	return m
}

// Raw exposes the underlying gocv.Mat for OpenCV calls. Callers must not
// retain it past the wrapper's Close.
func (m *Mat) Raw() *gocv.Mat {
	return &m.mat
}

func (m *Mat) Valid() bool {
	return atomic.LoadInt32(&m.isValid) == 1
}

func (m *Mat) Cols() int { return m.mat.Cols() }
func (m *Mat) Rows() int { return m.mat.Rows() }

// Retain adds a reference; each holder must call Release.
func (m *Mat) Retain() {
	atomic.AddInt32(&m.refCount, 1)
}

// Release drops a reference and closes the Mat when the last one goes.
func (m *Mat) Release() {
	if atomic.AddInt32(&m.refCount, -1) == 0 {
		m.Close()
	}
}

// Close frees the native Mat regardless of outstanding references.
func (m *Mat) Close() {
	if atomic.CompareAndSwapInt32(&m.isValid, 1, 0) {
		m.mat.Close()
		tracker.trackRelease(m.bytes)
		runtime.SetFinalizer(m, nil)
	}
}

func (m *Mat) finalize() {
	if atomic.CompareAndSwapInt32(&m.isValid, 1, 0) {
		m.mat.Close()
		tracker.trackRelease(m.bytes)
	}
}

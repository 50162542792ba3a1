// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"
)

const (
	// 0 - 99 is OK.  They do not contain info, and are special handled
	// using a static instance, no alloc.
	Ok            uint16 = 0
	OkExpectedEOF uint16 = 2 // Expected End Of File

	OkMax uint16 = 99

	// Group 1: Internal errors
	ErrStart        uint16 = 20100
	ErrInternal     uint16 = 20101
	ErrNotSupported uint16 = 20105

	// Group 2: numeric and block kernels
	ErrInvalidArg      uint16 = 20203
	ErrShapeMismatch   uint16 = 20210
	ErrUnknownOperator uint16 = 20211

	// Group 3: invalid input
	ErrBadConfig     uint16 = 20300
	ErrInvalidInput  uint16 = 20301
	ErrTagOutOfOrder uint16 = 20320

	// Group 4: unexpected state and io errors
	ErrInvalidState  uint16 = 20400
	ErrFileNotFound  uint16 = 20405
	ErrUnexpectedEOF uint16 = 20407
	ErrNoConfig      uint16 = 20443

	// Group End: max value of MOErrorCode
	ErrEnd uint16 = 65535
)

type moErrorMsgItem struct {
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]moErrorMsgItem{
	// Group 1: Internal errors
	ErrStart:        {"internal error: error code start"},
	ErrInternal:     {"internal error: %s"},
	ErrNotSupported: {"not supported: %s"},

	// Group 2: numeric and block kernels
	ErrInvalidArg:      {"invalid argument %s, bad value %s"},
	ErrShapeMismatch:   {"block shape mismatch: %s"},
	ErrUnknownOperator: {"unknown aggregate binary operator %s"},

	// Group 3: invalid input
	ErrBadConfig:     {"invalid configuration: %s"},
	ErrInvalidInput:  {"invalid input: %s"},
	ErrTagOutOfOrder: {"tag is not ordered correctly: %d > %d for join key %d"},

	// Group 4: unexpected state or file io error
	ErrInvalidState:  {"invalid state %s"},
	ErrFileNotFound:  {"file %s is not found"},
	ErrUnexpectedEOF: {"unexpected end of file %s"},
	ErrNoConfig:      {"no configure: %s"},

	// Group End: max value of MOErrorCode
	ErrEnd: {"internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist MOErrorCode: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:    code,
			message: item.errorMsgOrFormat,
		}
	} else {
		err = &Error{
			code:    code,
			message: fmt.Sprintf(item.errorMsgOrFormat, args...),
		}
	}
	return err
}

type Error struct {
	code    uint16
	message string
	detail  string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Detail() string {
	return e.detail
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

// WithDetail attaches extra context shown by Display. The message is kept.
func (e *Error) WithDetail(detail string) *Error {
	e.detail = detail
	return e
}

func (e *Error) Succeeded() bool {
	return e.code < OkMax
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	me, ok := e.(*Error)
	if !ok {
		// This is not a moerr
		return false
	}
	return me.code == rc
}

// ConvertPanicError converts a runtime panic to internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v: %s", v, debug.Stack()))
}

// ConvertGoError converts a go error into mo error.
// Note here we must return error, because nil error
// is the same as nil *Error -- Go strangeness.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a moerr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	// Convert a few well known os/go error.
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}

	return NewInternalError(ctx, "convert go error to mo error %v", err)
}

// Ok codes are not errors. They are returned as a shared static instance,
// test them with either err == GetOkExpectedEOF() or IsMoErrCode.
var errOkExpectedEOF = Error{OkExpectedEOF, "ExpectedEOF", ""}

func GetOkExpectedEOF() *Error {
	return &errOkExpectedEOF
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

func NewNotSupported(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrNotSupported, xmsg)
}

func NewInvalidArg(ctx context.Context, arg string, val any) *Error {
	return newError(ctx, ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewShapeMismatch(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrShapeMismatch, xmsg)
}

func NewUnknownOperator(ctx context.Context, name string) *Error {
	return newError(ctx, ErrUnknownOperator, name)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewTagOutOfOrder(ctx context.Context, prevTag, tag uint8, joinKey int64) *Error {
	return newError(ctx, ErrTagOutOfOrder, prevTag, tag, joinKey)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewFileNotFound(ctx context.Context, f string) *Error {
	return newError(ctx, ErrFileNotFound, f)
}

func NewUnexpectedEOF(ctx context.Context, f string) *Error {
	return newError(ctx, ErrUnexpectedEOF, f)
}

func NewNoConfig(ctx context.Context, f string) *Error {
	return newError(ctx, ErrNoConfig, f)
}

var contextFunc atomic.Value

func SetContextFunc(f func() context.Context) {
	contextFunc.Store(f)
}

// Context is the fallback context of callers without one.
func Context() context.Context {
	return contextFunc.Load().(func() context.Context)()
}

func init() {
	SetContextFunc(func() context.Context { return context.Background() })
}

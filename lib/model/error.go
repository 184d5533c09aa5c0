/*
 * Copyright 2024 CMS-Fleet
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model

type NotFoundError struct {
	err error
}

func NewNotFoundError(err error) *NotFoundError {
	return &NotFoundError{err: err}
}

func (e *NotFoundError) Error() string {
	return e.err.Error()
}

func (e *NotFoundError) Unwrap() error {
	return e.err
}

type InvalidInputError struct {
	err error
}

func NewInvalidInputError(err error) *InvalidInputError {
	return &InvalidInputError{err: err}
}

func (e *InvalidInputError) Error() string {
	return e.err.Error()
}

func (e *InvalidInputError) Unwrap() error {
	return e.err
}

type ForbiddenError struct {
	err error
}

func NewForbiddenError(err error) *ForbiddenError {
	return &ForbiddenError{err: err}
}

func (e *ForbiddenError) Error() string {
	return e.err.Error()
}

func (e *ForbiddenError) Unwrap() error {
	return e.err
}

type ConflictError struct {
	err error
}

func NewConflictError(err error) *ConflictError {
	return &ConflictError{err: err}
}

func (e *ConflictError) Error() string {
	return e.err.Error()
}

func (e *ConflictError) Unwrap() error {
	return e.err
}

type TransientError struct {
	err error
}

func NewTransientError(err error) *TransientError {
	return &TransientError{err: err}
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

type InternalError struct {
	err error
}

func NewInternalError(err error) *InternalError {
	return &InternalError{err: err}
}

func (e *InternalError) Error() string {
	return e.err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.err
}

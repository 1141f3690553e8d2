// Copyright (c) 2026 TTBT Enterprises LLC
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

package backend

import "errors"

// ErrorKind classifies recoverable operation failures. Every failed
// operation maps to a user-visible message plus one of these kinds; the
// frontend mirrors the same taxonomy when it renders #auth-message,
// #admin-message and the game messages.
type ErrorKind string

const (
	KindValidation           ErrorKind = "validation"
	KindAuth                 ErrorKind = "auth"
	KindConflict             ErrorKind = "conflict"
	KindInsufficientFunds    ErrorKind = "insufficient_funds"
	KindInsufficientResource ErrorKind = "insufficient_resource"
)

// FarmError is a recoverable operation failure. Message holds the literal
// text the UI displays; no FarmError is fatal to the running application.
type FarmError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *FarmError) Error() string {
	return e.Message
}

func validationError(msg string) *FarmError {
	return &FarmError{Kind: KindValidation, Message: msg}
}

func authError(msg string) *FarmError {
	return &FarmError{Kind: KindAuth, Message: msg}
}

func conflictError(msg string) *FarmError {
	return &FarmError{Kind: KindConflict, Message: msg}
}

// IsKind reports whether err is a FarmError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FarmError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// User-visible message literals. The e2e suite asserts on these exact
// strings, so they are defined once here and duplicated verbatim in the
// frontend.
const (
	MsgLoginFailed        = "帳號或密碼錯誤"
	MsgLoginEmpty         = "請輸入帳號和密碼"
	MsgLoginOK            = "登入成功"
	MsgRegisterOK         = "註冊成功"
	MsgRegisterEmpty      = "請填寫所有欄位"
	MsgPasswordMismatch   = "兩次輸入的密碼不一致"
	MsgUsernameTaken      = "此帳號已被註冊"
	MsgUsernameTooShort   = "帳號長度至少需要 3 個字元"
	MsgPasswordTooShort   = "密碼長度至少需要 6 個字元"
	MsgSelectUser         = "請選擇使用者"
	MsgInvalidPointAmount = "請輸入有效的點數數量"
	MsgUserNotFound       = "找不到使用者"
	MsgNoRegularUsers     = "目前沒有一般使用者"
	MsgNotEnoughPoints    = "點數不足，無法購買牧草"
	MsgNotEnoughGrass     = "牧草不足，請先購買牧草"
	MsgCattleFull         = "這頭乳牛已經吃飽了！"
	MsgCattleNotFound     = "找不到這頭乳牛"
	MsgInvalidGrassAmount = "購買數量必須大於 0"
)

//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package udpecho

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// DecodeLossy converts p to text. Invalid UTF-8 is replaced with
// utf8.RuneError (U+FFFD) instead of failing.
func DecodeLossy(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(p)
	if err != nil {
		return strings.ToValidUTF8(string(p), string(utf8.RuneError))
	}
	return string(out)
}

// BuildReply returns prefix followed by text, as the bytes of one reply datagram.
func BuildReply(prefix, text string) []byte {
	b := make([]byte, 0, len(prefix)+len(text))
	b = append(b, prefix...)
	return append(b, text...)
}

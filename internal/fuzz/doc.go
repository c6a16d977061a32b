// Package fuzztests houses Go fuzz harnesses for the preprocessor's input
// boundaries: parse dump decoding, the edit fold and the message simplifier.
// The goal is to guard against panics and broken replay on arbitrary input.
//
// Назначение: прогонять произвольные байты через syntax.Decode/FromDump,
// preproc.Run, edit.Fold и simplify.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

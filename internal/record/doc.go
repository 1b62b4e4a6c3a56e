// Package record defines the untyped value model that flows through the
// gateway: the Value union for column values, the ordered Record that
// carries a request body or a result row, and the two SQL encodings
// (literal text and bound parameter) every statement is built from.
//
// This package contains type definitions and encodings only. All other
// internal packages import record; record imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Values are a sealed union: Null, Bool, Int, Float, String, Array.
//     JSON objects are not valid column values and are rejected on decode.
//   - Records preserve the key order of the JSON body they were decoded
//     from; INSERT column order is exactly that order.
//   - Numbers are decoded through json.Number so integers stay int64 and
//     only genuine fractions or exponents become Float.
package record

/*
Copyright © 2019 the ESL authors.
This file is part of ESL.

ESL is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ESL is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ESL.  If not, see <http://www.gnu.org/licenses/>.
*/

/*
Package esl locates, opens and combines the NetCDF datasets used to study
extreme sea levels: tide gauge records, ERA5 wave and hourly reanalysis
fields, and CMIP6 tidal datum projections.

Files are discovered by walking a directory tree (ScanFiles), grouped by
the variable encoded in their names (VariableName, GroupByVariable), and
assembled into in-memory datasets by a Loader in one of three ways:

	LoadByVariable  one dataset per variable, ordered by coordinates
	OpenFlat        one dataset concatenated along time in file order
	OpenExplicit    named station files, subset to a BoundingBox and
	                concatenated along the station dimension

Data roots may be local directories or blob storage URLs
("file://", "gs://", "s3://").
*/
package esl

// Version gives the version number.
const Version = "0.1.0"
